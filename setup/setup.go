// Package setup walks a new user through creating config.yaml.
package setup

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"node.town/speakwith/config"
	"node.town/speakwith/profile"
)

// Answers are the values collected by the wizard.
type Answers struct {
	LLMProvider  string
	STTProvider  string
	OpenAIAPIKey string
	GeminiAPIKey string
	Language     string
	UI           string
	CreateDocs   bool
}

func defaults(v *viper.Viper) Answers {
	c := config.Load(v)
	return Answers{
		LLMProvider:  c.LLMProvider,
		STTProvider:  c.STTProvider,
		OpenAIAPIKey: c.OpenAIAPIKey,
		GeminiAPIKey: c.GeminiAPIKey,
		Language:     c.Language,
		UI:           c.UI,
		CreateDocs:   true,
	}
}

func providerOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("OpenAI", config.ProviderOpenAI),
		huh.NewOption("Google Gemini", config.ProviderGemini),
	}
}

func (a *Answers) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which provider should write suggestions?").
				Options(providerOptions()...).
				Value(&a.LLMProvider),
			huh.NewSelect[string]().
				Title("Which provider should transcribe speech?").
				Options(providerOptions()...).
				Value(&a.STTProvider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your OpenAI API Key").
				EchoMode(huh.EchoModePassword).
				Value(&a.OpenAIAPIKey),
		).WithHideFunc(func() bool { return !a.uses(config.ProviderOpenAI) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your Google Cloud (Gemini) API Key").
				EchoMode(huh.EchoModePassword).
				Value(&a.GeminiAPIKey),
		).WithHideFunc(func() bool { return !a.uses(config.ProviderGemini) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Conversation language (ISO-639-1)").
				Value(&a.Language),
			huh.NewSelect[string]().
				Title("Interface").
				Options(
					huh.NewOption("Full screen", config.UITUI),
					huh.NewOption("Plain terminal", config.UIPlain),
				).
				Value(&a.UI),
			huh.NewConfirm().
				Title("Create empty profile documents?").
				Value(&a.CreateDocs),
		),
	)
}

func (a *Answers) uses(provider string) bool {
	return a.LLMProvider == provider || a.STTProvider == provider
}

// Apply stores the answers in v.
func (a Answers) Apply(v *viper.Viper) {
	if v.GetString("llm_provider") != a.LLMProvider {
		// a model name only makes sense for the provider it was chosen for
		v.Set("llm_model", "")
	}
	v.Set("llm_provider", a.LLMProvider)
	v.Set("stt_provider", a.STTProvider)
	v.Set("language", a.Language)
	v.Set("ui", a.UI)
	if a.OpenAIAPIKey != "" {
		v.Set("openai_api_key", a.OpenAIAPIKey)
	}
	if a.GeminiAPIKey != "" {
		v.Set("gemini_api_key", a.GeminiAPIKey)
	}
}

// CreateProfileDocs writes empty profile documents that do not exist yet.
func CreateProfileDocs(fs afero.Fs, dir string) ([]string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	headings := map[string]string{
		profile.BackgroundFile: "# Background\n\nWho you are, what you do, what you care about.\n",
		profile.MoodBoardFile:  "# Mood board\n\nHow you like to come across in conversation.\n",
	}

	var created []string
	for _, name := range []string{profile.BackgroundFile, profile.MoodBoardFile} {
		path := filepath.Join(dir, name)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := afero.WriteFile(fs, path, []byte(headings[name]), 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", path, err)
		}
		created = append(created, path)
	}
	return created, nil
}

// Run asks the questions and writes the configuration file to path.
func Run(v *viper.Viper, path string, logger *log.Logger) error {
	logger.Info("Starting SpeakWith setup...")

	answers := defaults(v)
	if err := answers.form().Run(); err != nil {
		return fmt.Errorf("setup form: %w", err)
	}

	answers.Apply(v)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	logger.Info("Configuration saved", "path", path)

	if answers.CreateDocs {
		dir := config.Load(v).UserDataDir
		created, err := CreateProfileDocs(afero.NewOsFs(), dir)
		if err != nil {
			return err
		}
		for _, p := range created {
			logger.Info("Created profile document", "path", p)
		}
	}

	if err := config.Load(v).Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logger.Warn("Setup finished without an API key", "error", err)
			return nil
		}
		return err
	}

	logger.Info("Setup completed successfully!")
	return nil
}

// DefaultPath is where setup writes when no config file is in use.
func DefaultPath(v *viper.Viper) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	return "config.yaml"
}
