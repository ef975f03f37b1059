package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"node.town/speakwith/session"
)

var ErrEmptyResponse = errors.New("language model returned no content")

// LanguageModel is everything the pipeline asks of a model provider.
type LanguageModel interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
	GenerateSuggestions(
		ctx context.Context,
		c session.Context,
	) (session.Suggestions, error)
	GenerateSummary(
		ctx context.Context,
		transcripts []string,
		previousSummary string,
	) (string, error)
}

// Options are shared by all providers.
type Options struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// generator is the one call a provider has to implement; prompts and
// output parsing are shared.
type generator interface {
	generate(ctx context.Context, req *request) (string, error)
}

type request struct {
	System string
	Prompt string
	JSON   bool
}

func withTimeout(
	ctx context.Context,
	timeout time.Duration,
) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func generateSuggestions(
	ctx context.Context,
	g generator,
	c session.Context,
) (session.Suggestions, error) {
	content, err := g.generate(ctx, &request{
		System: SuggestionSystemPrompt(c),
		Prompt: SuggestionUserPrompt(c),
		JSON:   true,
	})
	if err != nil {
		return session.Suggestions{}, fmt.Errorf("generate suggestions: %w", err)
	}
	return ParseSuggestions(content), nil
}

func generateSummary(
	ctx context.Context,
	g generator,
	transcripts []string,
	previousSummary string,
) (string, error) {
	content, err := g.generate(ctx, &request{
		System: summarySystemPrompt,
		Prompt: SummaryPrompt(transcripts, previousSummary),
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return content, nil
}
