package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"node.town/speakwith/session"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiLanguageModel struct {
	client *genai.Client
	opts   Options
}

func NewGeminiLanguageModel(
	ctx context.Context,
	opts Options,
) (*GeminiLanguageModel, error) {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiLanguageModel{client: client, opts: opts}, nil
}

func (g *GeminiLanguageModel) Close() error {
	return g.client.Close()
}

func (g *GeminiLanguageModel) Generate(
	ctx context.Context,
	prompt, system string,
) (string, error) {
	return g.generate(ctx, &request{System: system, Prompt: prompt})
}

func (g *GeminiLanguageModel) GenerateSuggestions(
	ctx context.Context,
	c session.Context,
) (session.Suggestions, error) {
	return generateSuggestions(ctx, g, c)
}

func (g *GeminiLanguageModel) GenerateSummary(
	ctx context.Context,
	transcripts []string,
	previousSummary string,
) (string, error) {
	return generateSummary(ctx, g, transcripts, previousSummary)
}

func (g *GeminiLanguageModel) generate(
	ctx context.Context,
	req *request,
) (string, error) {
	ctx, cancel := withTimeout(ctx, g.opts.Timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.opts.Model)
	model.GenerationConfig.SetTemperature(g.opts.Temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.JSON {
		model.GenerationConfig.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := ResponseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ResponseText joins the text parts of every candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return strings.TrimSpace(text.String())
}
