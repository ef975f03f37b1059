package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"node.town/speakwith/audio"
	"node.town/speakwith/config"
	"node.town/speakwith/etc"
	"node.town/speakwith/llm"
	"node.town/speakwith/logging"
	"node.town/speakwith/pipeline"
	"node.town/speakwith/profile"
	"node.town/speakwith/session"
	"node.town/speakwith/setup"
	"node.town/speakwith/stt"
	"node.town/speakwith/ui"
)

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or $HOME/.speakwith/config.yaml)")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().String("gemini-api-key", "", "Google Gemini API key")
	rootCmd.PersistentFlags().String("llm-provider", "", "suggestion provider (openai, gemini)")
	rootCmd.PersistentFlags().String("stt-provider", "", "transcription provider (openai, gemini)")
	rootCmd.PersistentFlags().String("user-data-dir", "", "directory holding the profile documents")
	rootCmd.PersistentFlags().String("log-file", "", "log file")
	rootCmd.PersistentFlags().String("log-level", "", "log level")

	runCmd.Flags().String("mode", "", "conversation mode, skips the mode prompt")
	runCmd.Flags().String("replay", "", "replay a WAV file instead of the microphone")
	runCmd.Flags().String("ui", "", "interface (tui, plain)")

	for key, flag := range map[string]string{
		"openai_api_key": "openai-api-key",
		"gemini_api_key": "gemini-api-key",
		"llm_provider":   "llm-provider",
		"stt_provider":   "stt-provider",
		"user_data_dir":  "user-data-dir",
		"log_file":       "log-file",
		"log_level":      "log-level",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
	viper.BindPFlag("mode", runCmd.Flags().Lookup("mode"))
	viper.BindPFlag("replay_file", runCmd.Flags().Lookup("replay"))
	viper.BindPFlag("ui", runCmd.Flags().Lookup("ui"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(transcribeCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.speakwith")
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}

	loadDotenv(viper.GetViper(), ".env")
}

// loadDotenv makes the keys of a .env file available below every other
// source.
func loadDotenv(v *viper.Viper, path string) {
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("dotenv")
	if err := env.ReadInConfig(); err != nil {
		return
	}
	for _, key := range env.AllKeys() {
		v.SetDefault(key, env.Get(key))
	}
}

var rootCmd = &cobra.Command{
	Use:   "speakwith",
	Short: "SpeakWith suggests what to say while you listen",
	Long: `SpeakWith listens to a conversation, transcribes it in short segments
and keeps a few quick reactions and follow-up sentences ready to pick.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a listening session",
	RunE:  runSession,
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the conversation modes",
	Run:   runModes,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the profile documents used for suggestions",
	RunE:  runProfile,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a configuration file interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(cmd.ErrOrStderr())
		return setup.Run(viper.GetViper(), setup.DefaultPath(viper.GetViper()), logger)
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <transcript.txt>",
	Short: "Summarize a transcript file, one utterance per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <recording.wav>",
	Short: "Transcribe a WAV recording segment by segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, err := chooseMode(cfg.Mode)
	if err != nil {
		return err
	}
	cfg.Mode = mode

	loggers, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer loggers.Close()

	sessionID := etc.NewFreshID()
	mainLogger := loggers.Main.With("session", sessionID)
	mainLogger.Info("starting session", "mode", mode, "llm", cfg.LLMProvider, "stt", cfg.STTProvider)

	loader := profile.NewLoader(afero.NewOsFs(), cfg.UserDataDir)
	userProfile, err := loader.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, closeModel, err := newLanguageModel(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	transcriber, closeTranscriber := newTranscriber(cfg, loggers.Hear)
	defer closeTranscriber()

	deps := pipeline.Deps{
		Source:      newSource(cfg, loggers.Hear),
		Transcriber: transcriber,
		Model:       model,
		Profile:     userProfile,
		Loggers:     loggers,
	}

	var tui *ui.TUI
	if cfg.UI == config.UIPlain {
		reader := ui.NewPlainReader(cmd.InOrStdin(), cmd.OutOrStdout())
		defer reader.Close()
		deps.Renderer = ui.NewPlainRenderer(cmd.OutOrStdout())
		deps.Input = reader
	} else {
		tui = ui.NewTUI()
		deps.Renderer = tui
		deps.Input = tui
	}

	coordinator := pipeline.New(cfg, deps)
	defer coordinator.Stop()

	fmt.Fprintln(cmd.ErrOrStderr(), "Initializing...")
	if err := coordinator.Initialize(ctx); err != nil {
		return err
	}

	tuiDone := make(chan struct{})
	if tui != nil {
		go func() {
			defer close(tuiDone)
			if err := tui.Run(); err != nil {
				mainLogger.Error("tui", "error", err)
			}
		}()
	} else {
		close(tuiDone)
	}

	err = coordinator.Run(ctx)
	if tui != nil {
		tui.Quit()
	}
	<-tuiDone

	if err != nil {
		mainLogger.Error("session failed", "error", err)
		return err
	}
	mainLogger.Info("session ended")
	return nil
}

// chooseMode resolves a configured mode or asks for one.
func chooseMode(configured session.Mode) (session.Mode, error) {
	if configured != "" {
		return session.LookupMode(string(configured))
	}

	options := make([]huh.Option[session.Mode], 0, len(session.Modes()))
	for _, mc := range session.Modes() {
		options = append(options, huh.NewOption(
			fmt.Sprintf("%s - %s", mc.DisplayName, mc.Description),
			mc.Mode,
		))
	}

	mode := session.ModeFriendly
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[session.Mode]().
				Title("Choose a conversation mode").
				Options(options...).
				Value(&mode),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("mode selection: %w", err)
	}
	return mode, nil
}

func newLanguageModel(
	ctx context.Context,
	cfg config.Config,
) (llm.LanguageModel, func() error, error) {
	opts := llm.Options{
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	}

	if cfg.LLMProvider == config.ProviderGemini {
		opts.APIKey = cfg.GeminiAPIKey
		model, err := llm.NewGeminiLanguageModel(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return model, model.Close, nil
	}

	opts.APIKey = cfg.OpenAIAPIKey
	return llm.NewOpenAILanguageModel(opts), func() error { return nil }, nil
}

func newTranscriber(cfg config.Config, logger *log.Logger) (stt.Transcriber, func() error) {
	if cfg.STTProvider == config.ProviderGemini {
		model := ""
		if cfg.LLMProvider == config.ProviderGemini {
			model = cfg.LLMModel
		}
		t := stt.NewGeminiTranscriber(cfg.GeminiAPIKey, model, cfg.Language, logger)
		return t, t.Close
	}
	t := stt.NewWhisperTranscriber(cfg.OpenAIAPIKey, cfg.WhisperModel, cfg.Language, logger)
	return t, func() error { return nil }
}

func newSource(cfg config.Config, logger *log.Logger) audio.Source {
	if cfg.ReplayFile != "" {
		return audio.NewFileSource(cfg.ReplayFile, cfg.ChunkDuration, true)
	}
	return audio.NewCommandSource(cfg.CaptureCommand, cfg.SampleRate, cfg.ChunkDuration, logger)
}

func runModes(cmd *cobra.Command, args []string) {
	writeModes(cmd.OutOrStdout())
}

func writeModes(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Mode", "Name", "Description"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)

	for i, mc := range session.Modes() {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(mc.Mode),
			mc.DisplayName,
			mc.Description,
		})
	}

	table.Render()
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetViper())
	loader := profile.NewLoader(afero.NewOsFs(), cfg.UserDataDir)

	doc, err := profileMarkdown(loader)
	if err != nil {
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("render profile: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

// profileMarkdown lays both documents out in one markdown page and says
// which of them are missing.
func profileMarkdown(loader *profile.Loader) (string, error) {
	p, err := loader.Load()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Profile in `%s`\n\n", loader.Dir())

	for _, doc := range []struct {
		name, content string
		exists        bool
	}{
		{profile.BackgroundFile, p.Background, loader.BackgroundExists()},
		{profile.MoodBoardFile, p.MoodBoard, loader.MoodBoardExists()},
	} {
		fmt.Fprintf(&b, "## %s\n\n", doc.name)
		switch {
		case !doc.exists:
			b.WriteString("_Missing. Run `speakwith setup` or create the file by hand._\n\n")
		case strings.TrimSpace(doc.content) == "":
			b.WriteString("_Empty._\n\n")
		default:
			b.WriteString(strings.TrimSpace(doc.content))
			b.WriteString("\n\n")
		}
	}
	return b.String(), nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s holds no transcript lines", args[0])
	}

	ctx := cmd.Context()
	model, closeModel, err := newLanguageModel(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	summary, err := model.GenerateSummary(ctx, lines, "")
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(62),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := renderer.Render(summary)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(cmd.ErrOrStderr())
	ctx := cmd.Context()

	transcriber, closeTranscriber := newTranscriber(cfg, logger)
	defer closeTranscriber()
	if err := transcriber.Initialize(ctx); err != nil {
		return err
	}

	source := audio.NewFileSource(args[0], cfg.ChunkDuration, false)
	if err := source.Open(ctx); err != nil {
		return err
	}
	defer source.Close()

	for index := 0; ; index++ {
		segment, err := source.Next(ctx)
		if errors.Is(err, audio.ErrSourceClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		text, err := transcriber.Transcribe(ctx, segment)
		if err != nil {
			return fmt.Errorf("transcribe segment: %w", err)
		}
		if text == "" {
			continue
		}
		fmt.Fprintf(
			cmd.OutOrStdout(),
			"[%s] %s\n",
			etc.FormatElapsed(cfg.ChunkDuration*time.Duration(index)),
			text,
		)
	}
}
