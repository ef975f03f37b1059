package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"node.town/speakwith/audio"
	"node.town/speakwith/llm"
)

const geminiSystemPrompt = `Transcribe this conversation segment as accurately as possible, with good grammar and punctuation.

Reply with the transcript only. If nobody speaks, reply with an empty message.`

// noSpeech is what the model tends to answer for silence despite the prompt.
var noSpeech = []string{"[silence]", "(silence)", "[no speech]", "(no speech)"}

type GeminiTranscriber struct {
	apiKey    string
	modelName string
	language  string
	log       *log.Logger

	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiTranscriber(
	apiKey, model, language string,
	logger *log.Logger,
) *GeminiTranscriber {
	if model == "" {
		model = llm.DefaultGeminiModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GeminiTranscriber{
		apiKey:    apiKey,
		modelName: model,
		language:  language,
		log:       logger,
	}
}

func (g *GeminiTranscriber) Initialize(ctx context.Context) error {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return fmt.Errorf("create Gemini client: %w", err)
	}

	model := client.GenerativeModel(g.modelName)
	model.GenerationConfig.SetTemperature(0.1)
	model.GenerationConfig.SetTopP(1.0)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiSystemPrompt)},
	}

	if _, err := model.Info(ctx); err != nil {
		client.Close()
		return fmt.Errorf("check Gemini model %q: %w", g.modelName, err)
	}

	g.client = client
	g.model = model
	g.log.Info("Gemini transcription model ready", "model", g.modelName)
	return nil
}

func (g *GeminiTranscriber) Transcribe(
	ctx context.Context,
	segment audio.Segment,
) (string, error) {
	if g.model == nil {
		return "", fmt.Errorf("gemini transcriber not initialized")
	}
	if silent(segment, silenceThreshold) {
		return "", nil
	}

	resp, err := g.model.GenerateContent(
		ctx,
		genai.Blob{
			MIMEType: "audio/wav",
			Data:     audio.EncodeWAV(segment.PCM, segment.SampleRate),
		},
		genai.Text(fmt.Sprintf("Language: %s", g.language)),
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	return cleanTranscript(llm.ResponseText(resp)), nil
}

func (g *GeminiTranscriber) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	for _, marker := range noSpeech {
		if strings.EqualFold(text, marker) {
			return ""
		}
	}
	return text
}
