package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.Set("openai_api_key", "sk-test")
	c := Load(v)

	if c.LLMModel != "gpt-4o-mini" || c.WhisperModel != "whisper-1" {
		t.Errorf("models = %q, %q", c.LLMModel, c.WhisperModel)
	}
	if c.ChunkDuration != 10*time.Second || c.SummaryInterval != 30*time.Second {
		t.Errorf("durations = %v, %v", c.ChunkDuration, c.SummaryInterval)
	}
	if c.MaxTranscripts != 3 || c.SummaryUpdateInterval != 3 || c.Workers != 4 {
		t.Errorf("sizes = %d, %d, %d", c.MaxTranscripts, c.SummaryUpdateInterval, c.Workers)
	}
	if c.LLMTemperature != 0.7 {
		t.Errorf("temperature = %v", c.LLMTemperature)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadGeminiModel(t *testing.T) {
	v := viper.New()
	v.Set("llm_provider", "gemini")
	if c := Load(v); c.LLMModel != "gemini-1.5-flash" {
		t.Errorf("LLMModel = %q", c.LLMModel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr string
		missing bool
	}{
		{"Missing OpenAI key", map[string]any{}, "openai_api_key", true},
		{
			"Missing Gemini key for transcription",
			map[string]any{"openai_api_key": "sk", "stt_provider": "gemini"},
			"gemini_api_key",
			true,
		},
		{
			"Gemini only",
			map[string]any{"gemini_api_key": "g", "llm_provider": "gemini", "stt_provider": "gemini"},
			"",
			false,
		},
		{"Unknown provider", map[string]any{"openai_api_key": "sk", "llm_provider": "llama"}, "llm_provider", false},
		{"Zero history", map[string]any{"openai_api_key": "sk", "max_transcripts": 0}, "max_transcripts", false},
		{"Negative chunk", map[string]any{"openai_api_key": "sk", "chunk_duration": "-1s"}, "chunk_duration", false},
		{"Unknown ui", map[string]any{"openai_api_key": "sk", "ui": "web"}, "ui", false},
		{"Unknown mode", map[string]any{"openai_api_key": "sk", "mode": "dating"}, "mode", false},
		{"Mode by index", map[string]any{"openai_api_key": "sk", "mode": "2"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			err := Load(v).Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
			if errors.Is(err, ErrMissingAPIKey) != tt.missing {
				t.Errorf("errors.Is(ErrMissingAPIKey) = %v, want %v", !tt.missing, tt.missing)
			}
		})
	}
}
