package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"
	"node.town/speakwith/audio"
)

// silenceThreshold is the peak amplitude below which a segment is not sent.
const silenceThreshold = 300

type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
	log      *log.Logger
}

func NewWhisperTranscriber(
	apiKey, model, language string,
	logger *log.Logger,
) *WhisperTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &WhisperTranscriber{
		client:   openai.NewClient(apiKey),
		model:    model,
		language: language,
		log:      logger,
	}
}

// Initialize checks the key and that the model is available.
func (w *WhisperTranscriber) Initialize(ctx context.Context) error {
	model, err := w.client.GetModel(ctx, w.model)
	if err != nil {
		return fmt.Errorf("check whisper model %q: %w", w.model, err)
	}
	w.log.Info("Whisper model ready", "model", model.ID)
	return nil
}

func (w *WhisperTranscriber) Transcribe(
	ctx context.Context,
	segment audio.Segment,
) (string, error) {
	if silent(segment, silenceThreshold) {
		return "", nil
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "segment.wav",
		Reader:   bytes.NewReader(audio.EncodeWAV(segment.PCM, segment.SampleRate)),
		Language: w.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI transcription error: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
