// Package main provides the QuizPilot command: it opens a course page,
// finds the quiz on it, answers every question and submits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/quizpilot/pkg/act"
	appconfig "github.com/entrhq/quizpilot/pkg/config"
	"github.com/entrhq/quizpilot/pkg/executor/headless"
	"github.com/entrhq/quizpilot/pkg/llm"
	"github.com/entrhq/quizpilot/pkg/llm/openai"
	"github.com/entrhq/quizpilot/pkg/logging"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	ActModel     string
	ConfigFile   string
	SettingsFile string
	URL          string
	HTML         string
	Timeout      time.Duration
	Headful      bool
	SkipSubmit   bool
	Verbosity    string
	OutputDir    string
	ShowVersion  bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("QuizPilot v%s\n", version)
		return
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Printf("Run failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (default $OPENAI_API_KEY)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI-compatible API base URL (default $OPENAI_BASE_URL)")
	flag.StringVar(&config.Model, "model", openai.DefaultModel, "LLM model to use")
	flag.StringVar(&config.ActModel, "act-model", "", "Model for page actions (defaults to -model)")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to run file (YAML)")
	flag.StringVar(&config.SettingsFile, "settings", "", "Path to settings file (default ~/.quizpilot/config.json)")
	flag.StringVar(&config.URL, "url", "", "URL of the page hosting the quiz")
	flag.StringVar(&config.HTML, "html", "", "Dry run against a saved HTML page instead of a browser")
	flag.DurationVar(&config.Timeout, "timeout", 10*time.Minute, "Run timeout")
	flag.BoolVar(&config.Headful, "headful", false, "Show the browser window")
	flag.BoolVar(&config.SkipSubmit, "skip-submit", false, "Answer without submitting")
	flag.StringVar(&config.Verbosity, "verbosity", "normal", "Console verbosity: quiet, normal, verbose or debug")
	flag.StringVar(&config.OutputDir, "output", "", "Directory for run artifacts")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "QuizPilot - answers web quizzes end to end\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quizpilot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Run against a live page\n")
		fmt.Fprintf(os.Stderr, "  quizpilot -url https://lms.example/course/7/quiz\n\n")
		fmt.Fprintf(os.Stderr, "  # Run with a run file\n")
		fmt.Fprintf(os.Stderr, "  quizpilot -config quiz.yaml\n\n")
		fmt.Fprintf(os.Stderr, "  # Dry run against a saved page\n")
		fmt.Fprintf(os.Stderr, "  quizpilot -html saved-quiz.html -verbosity verbose\n\n")
	}

	flag.Parse()

	config.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { config.set[f.Name] = true })
	return config
}

// run executes one quiz run
func run(ctx context.Context, cliConfig *CLIConfig) error {
	execConfig, err := loadConfig(cliConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if validationErr := execConfig.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	if initErr := appconfig.Initialize(cliConfig.SettingsFile); initErr != nil {
		return fmt.Errorf("failed to initialize configuration: %w", initErr)
	}

	fileLog, logErr := logging.NewLogger("quizpilot")
	if logErr != nil {
		log.Printf("Warning: %v", logErr)
	}
	defer fileLog.Close()
	fileLog.SetVerbose(execConfig.Logging.Verbosity == "debug")

	provider, err := buildProvider(cliConfig, execConfig)
	if err != nil {
		return err
	}

	opts, err := quizOptions()
	if err != nil {
		return err
	}
	fileLog.Infof("%s", profileSummary(opts.Actor.Profile))

	executor, err := headless.NewExecutor(provider, execConfig, opts, fileLog)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}
	if execConfig.Logging.Verbosity == "debug" {
		executor.SetDriverOutput(os.Stderr)
	}

	fileLog.Infof("run starting: url=%s dry_run=%t log=%s", execConfig.URL, execConfig.DryRun(), fileLog.LogPath())
	if err := executor.Run(ctx); err != nil {
		fileLog.Errorf("run failed: %v", err)
		return err
	}
	fileLog.Infof("run complete")
	return nil
}

// buildProvider resolves the LLM provider. A dry run without credentials
// proceeds without one.
func buildProvider(cliConfig *CLIConfig, execConfig *headless.Config) (llm.Provider, error) {
	provider, err := appconfig.BuildProvider(cliConfig.Model, cliConfig.BaseURL, cliConfig.APIKey, openai.DefaultModel)
	if err != nil {
		if execConfig.DryRun() {
			log.Printf("No LLM provider (%v); fallback answers are disabled for this dry run", err)
			return nil, nil
		}
		return nil, err
	}

	if execConfig.ActModel == "" {
		if llmConfig := appconfig.GetLLM(); llmConfig != nil {
			execConfig.ActModel = llmConfig.GetActModel()
		}
	}
	return provider, nil
}

// quizOptions builds the component settings from the quiz and profile
// sections of the settings file.
func quizOptions() (headless.Options, error) {
	opts := headless.DefaultOptions()

	if quizConfig := appconfig.GetQuiz(); quizConfig != nil {
		if err := quizConfig.Validate(); err != nil {
			return opts, fmt.Errorf("invalid quiz settings: %w", err)
		}
		locatorOpts, err := quizConfig.LocatorOptions()
		if err != nil {
			return opts, fmt.Errorf("invalid quiz settings: %w", err)
		}
		opts.Locator = locatorOpts
		opts.Markers = quizConfig.ExtractorMarkers()
		classifier, err := quizConfig.Classifier()
		if err != nil {
			return opts, fmt.Errorf("invalid quiz settings: %w", err)
		}
		opts.Classifier = classifier
		opts.Dispatcher = quizConfig.DispatcherOptions()
		opts.ProceedOnSettleTimeout = quizConfig.GetProceedOnSettleTimeout()
	}

	if profile := appconfig.GetProfile(); profile != nil {
		opts.Actor.Profile = profile.Profile()
	}
	return opts, nil
}

// loadConfig loads the run configuration from file, then applies flags
// that were set explicitly.
func loadConfig(cliConfig *CLIConfig) (*headless.Config, error) {
	config := headless.DefaultConfig()
	if cliConfig.ConfigFile != "" {
		loaded, err := headless.LoadConfig(cliConfig.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else if cliConfig.URL == "" && cliConfig.HTML == "" {
		return nil, errors.New("url is required when not using a config file")
	}

	applyFlags(config, cliConfig)
	return config, nil
}

func applyFlags(config *headless.Config, cliConfig *CLIConfig) {
	isSet := func(name string) bool {
		// Without a run file every flag, including its default, applies.
		return cliConfig.ConfigFile == "" || cliConfig.set[name]
	}

	if cliConfig.URL != "" {
		config.URL = cliConfig.URL
	}
	if cliConfig.HTML != "" {
		config.HTML = cliConfig.HTML
	}
	if cliConfig.ActModel != "" {
		config.ActModel = cliConfig.ActModel
	}
	if isSet("timeout") {
		config.Timeout = cliConfig.Timeout
	}
	if isSet("headful") {
		config.Browser.Headless = !cliConfig.Headful
	}
	if isSet("skip-submit") {
		config.SkipSubmit = cliConfig.SkipSubmit
	}
	if isSet("verbosity") {
		config.Logging.Verbosity = cliConfig.Verbosity
	}
	if cliConfig.OutputDir != "" {
		config.Artifacts.Enabled = true
		config.Artifacts.OutputDir = cliConfig.OutputDir
	}
}

// profileSummary names the student answers are written as.
func profileSummary(p act.Profile) string {
	if p.IsZero() {
		return "no student profile"
	}
	return "answering as " + p.Name
}
