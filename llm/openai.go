package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"node.town/speakwith/session"
)

type OpenAILanguageModel struct {
	client *openai.Client
	opts   Options
}

func NewOpenAILanguageModel(opts Options) *OpenAILanguageModel {
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	return &OpenAILanguageModel{
		client: openai.NewClient(opts.APIKey),
		opts:   opts,
	}
}

func (o *OpenAILanguageModel) Generate(
	ctx context.Context,
	prompt, system string,
) (string, error) {
	return o.generate(ctx, &request{System: system, Prompt: prompt})
}

func (o *OpenAILanguageModel) GenerateSuggestions(
	ctx context.Context,
	c session.Context,
) (session.Suggestions, error) {
	return generateSuggestions(ctx, o, c)
}

func (o *OpenAILanguageModel) GenerateSummary(
	ctx context.Context,
	transcripts []string,
	previousSummary string,
) (string, error) {
	return generateSummary(ctx, o, transcripts, previousSummary)
}

func (o *OpenAILanguageModel) generate(
	ctx context.Context,
	req *request,
) (string, error) {
	ctx, cancel := withTimeout(ctx, o.opts.Timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	completion := openai.ChatCompletionRequest{
		Model:       o.opts.Model,
		Messages:    messages,
		Temperature: o.opts.Temperature,
	}
	if req.JSON {
		completion.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, completion)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
