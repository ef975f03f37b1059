// Package config turns viper settings into one explicit Config value.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"node.town/speakwith/audio"
	"node.town/speakwith/session"
)

var ErrMissingAPIKey = errors.New("missing API key")

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	UITUI   = "tui"
	UIPlain = "plain"
)

type Config struct {
	OpenAIAPIKey string
	GeminiAPIKey string

	LLMProvider    string
	LLMModel       string
	LLMTemperature float32
	LLMTimeout     time.Duration

	STTProvider  string
	WhisperModel string
	Language     string

	SampleRate     int
	ChunkDuration  time.Duration
	CaptureCommand string
	ReplayFile     string

	UserDataDir           string
	MaxTranscripts        int
	SummaryUpdateInterval int
	SummaryInterval       time.Duration
	Workers               int

	Mode     session.Mode
	UI       string
	LogFile  string
	LogLevel string
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_temperature", 0.7)
	v.SetDefault("llm_timeout", 30*time.Second)
	v.SetDefault("stt_provider", ProviderOpenAI)
	v.SetDefault("whisper_model", "whisper-1")
	v.SetDefault("language", "en")
	v.SetDefault("sample_rate", 16000)
	v.SetDefault("chunk_duration", 10*time.Second)
	v.SetDefault("capture_command", audio.DefaultCaptureCommand)
	v.SetDefault("replay_file", "")
	v.SetDefault("user_data_dir", "user_data")
	v.SetDefault("max_transcripts", 3)
	v.SetDefault("summary_update_interval", 3)
	v.SetDefault("summary_interval", 30*time.Second)
	v.SetDefault("workers", 4)
	v.SetDefault("mode", "")
	v.SetDefault("ui", UITUI)
	v.SetDefault("log_file", "speakwith.log")
	v.SetDefault("log_level", "info")
}

// Load reads the settings. It does not validate them.
func Load(v *viper.Viper) Config {
	SetDefaults(v)

	c := Config{
		OpenAIAPIKey: v.GetString("openai_api_key"),
		GeminiAPIKey: v.GetString("gemini_api_key"),

		LLMProvider:    v.GetString("llm_provider"),
		LLMModel:       v.GetString("llm_model"),
		LLMTemperature: float32(v.GetFloat64("llm_temperature")),
		LLMTimeout:     v.GetDuration("llm_timeout"),

		STTProvider:  v.GetString("stt_provider"),
		WhisperModel: v.GetString("whisper_model"),
		Language:     v.GetString("language"),

		SampleRate:     v.GetInt("sample_rate"),
		ChunkDuration:  v.GetDuration("chunk_duration"),
		CaptureCommand: v.GetString("capture_command"),
		ReplayFile:     v.GetString("replay_file"),

		UserDataDir:           v.GetString("user_data_dir"),
		MaxTranscripts:        v.GetInt("max_transcripts"),
		SummaryUpdateInterval: v.GetInt("summary_update_interval"),
		SummaryInterval:       v.GetDuration("summary_interval"),
		Workers:               v.GetInt("workers"),

		Mode:     session.Mode(v.GetString("mode")),
		UI:       v.GetString("ui"),
		LogFile:  v.GetString("log_file"),
		LogLevel: v.GetString("log_level"),
	}

	if c.LLMModel == "" {
		c.LLMModel = c.DefaultLLMModel()
	}
	return c
}

func (c Config) DefaultLLMModel() string {
	if c.LLMProvider == ProviderGemini {
		return "gemini-1.5-flash"
	}
	return "gpt-4o-mini"
}

// Validate reports the first setting that cannot work, including a
// missing key for a provider that is in use.
func (c Config) Validate() error {
	for _, p := range []struct{ key, value string }{
		{"llm_provider", c.LLMProvider},
		{"stt_provider", c.STTProvider},
	} {
		if p.value != ProviderOpenAI && p.value != ProviderGemini {
			return fmt.Errorf("unknown %s %q", p.key, p.value)
		}
	}

	if c.uses(ProviderOpenAI) && c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: openai_api_key (or OPENAI_API_KEY) is required", ErrMissingAPIKey)
	}
	if c.uses(ProviderGemini) && c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini_api_key (or GEMINI_API_KEY) is required", ErrMissingAPIKey)
	}

	for _, p := range []struct {
		key   string
		value int
	}{
		{"sample_rate", c.SampleRate},
		{"max_transcripts", c.MaxTranscripts},
		{"summary_update_interval", c.SummaryUpdateInterval},
		{"workers", c.Workers},
	} {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.key, p.value)
		}
	}

	for _, p := range []struct {
		key   string
		value time.Duration
	}{
		{"llm_timeout", c.LLMTimeout},
		{"chunk_duration", c.ChunkDuration},
		{"summary_interval", c.SummaryInterval},
	} {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", p.key, p.value)
		}
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("llm_temperature must be between 0 and 2, got %v", c.LLMTemperature)
	}
	if c.UI != UITUI && c.UI != UIPlain {
		return fmt.Errorf("unknown ui %q", c.UI)
	}
	if c.Mode != "" {
		if _, err := session.LookupMode(string(c.Mode)); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) uses(provider string) bool {
	return c.LLMProvider == provider || c.STTProvider == provider
}
