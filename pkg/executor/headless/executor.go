package headless

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/entrhq/quizpilot/pkg/act"
	"github.com/entrhq/quizpilot/pkg/browser"
	"github.com/entrhq/quizpilot/pkg/llm"
	"github.com/entrhq/quizpilot/pkg/llm/tokenizer"
	"github.com/entrhq/quizpilot/pkg/quiz"
	"github.com/entrhq/quizpilot/pkg/snapshot"
)

// sessionName is the browser session a run uses.
const sessionName = "quiz"

// Options carries the quiz component settings, normally built from the
// quiz and profile config sections.
type Options struct {
	Locator                quiz.LocatorOptions
	Markers                quiz.ExtractorMarkers
	Classifier             *quiz.Classifier
	Dispatcher             quiz.DispatcherOptions
	ProceedOnSettleTimeout bool
	Actor                  act.Options

	// Strategies replace the primary answer strategy of their modality.
	Strategies map[quiz.Modality]quiz.Strategy
}

// DefaultOptions returns the stock quiz settings.
func DefaultOptions() Options {
	return Options{
		Locator:    quiz.DefaultLocatorOptions(),
		Markers:    quiz.DefaultExtractorMarkers(),
		Classifier: quiz.MarkerClassifier(quiz.DefaultModalityMarkers()),
		Dispatcher: quiz.DefaultDispatcherOptions(),
		Actor:      act.DefaultOptions(),
	}
}

// Executor runs one quiz end to end
type Executor struct {
	config         *Config
	provider       llm.Provider
	opts           Options
	console        *Logger
	logger         quiz.Logger
	artifactWriter *ArtifactWriter
	driverOutput   io.Writer
	newTokenizer   func() (*tokenizer.Tokenizer, error)

	summary *ExecutionSummary
}

// NewExecutor creates an executor. provider may be nil for dry runs, in
// which case fallback answers are unavailable. logger receives the
// structured component log and may be nil.
func NewExecutor(provider llm.Provider, config *Config, opts Options, logger quiz.Logger) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if provider == nil && !config.DryRun() {
		return nil, errors.New("an LLM provider is required unless running against saved HTML")
	}
	if logger == nil {
		logger = quiz.NopLogger{}
	}

	e := &Executor{
		config:       config,
		provider:     provider,
		opts:         opts,
		console:      NewLogger(parseLogLevel(config.Logging.Verbosity)),
		logger:       logger,
		driverOutput: io.Discard,
		newTokenizer: tokenizer.New,
	}
	if config.Artifacts.Enabled {
		e.artifactWriter = NewArtifactWriter(config.Artifacts.OutputDir, config.Artifacts)
	}
	return e, nil
}

// SetConsole replaces the console reporter.
func (e *Executor) SetConsole(l *Logger) {
	e.console = l
}

// SetDriverOutput sets where browser driver installation output goes.
func (e *Executor) SetDriverOutput(w io.Writer) {
	e.driverOutput = w
}

// Summary returns the summary of the last run, nil before Run.
func (e *Executor) Summary() *ExecutionSummary {
	return e.summary
}

// Run opens the page, completes the quiz and writes artifacts. The returned
// error is non-nil when the run did not reach the done state.
func (e *Executor) Run(ctx context.Context) error {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	e.console.Header("QuizPilot")

	page, target, recorded, closePage, err := e.openPage()
	if err != nil {
		e.console.Errorf("%v", err)
		return err
	}
	defer func() {
		if cerr := closePage(); cerr != nil {
			e.logger.Log(quiz.Entry{
				Category: "executor",
				Message:  "failed to close page",
				Level:    quiz.LevelWarn,
				Auxiliary: map[string]any{
					"error": cerr.Error(),
				},
			})
		}
	}()

	runner := e.buildRunner(page)
	runner.OnEvent(e.console.HandleEvent)

	res, runErr := runner.Run(ctx, page, target)

	summary := NewExecutionSummary(res)
	summary.DryRun = e.config.DryRun()
	if recorded != nil {
		for _, a := range recorded() {
			summary.Interactions = append(summary.Interactions, a.String())
		}
	}
	e.summary = summary

	e.writeArtifacts(summary)
	e.console.Summary(summary)

	if runErr != nil {
		return fmt.Errorf("quiz run failed: %w", runErr)
	}
	return nil
}

// openPage returns the page to run on, the URL to open, an accessor for
// recorded interactions (dry runs only) and a close function.
func (e *Executor) openPage() (quiz.Page, string, func() []snapshot.Action, func() error, error) {
	if e.config.DryRun() {
		page, err := snapshot.Load(e.config.HTML, e.config.URL)
		if err != nil {
			return nil, "", nil, nil, err
		}
		e.console.Infof("Dry run against %s", e.config.HTML)
		return page, page.URL(), page.Actions, func() error { return nil }, nil
	}

	manager := browser.NewSessionManager(e.driverOutput)
	if err := manager.Initialize(); err != nil {
		return nil, "", nil, nil, fmt.Errorf("failed to start browser driver: %w", err)
	}
	session, err := manager.StartSession(sessionName, e.config.SessionOptions())
	if err != nil {
		_ = manager.Shutdown()
		return nil, "", nil, nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	e.console.Verbosef("Browser session started (headless=%t)", session.Headless)
	return session, e.config.URL, nil, manager.Shutdown, nil
}

func (e *Executor) buildRunner(page quiz.Page) *quiz.Runner {
	var actor quiz.Actor
	if e.provider != nil {
		actorOpts := e.opts.Actor
		actorOpts.Logger = e.logger
		if actorOpts.Tokenizer == nil {
			tok, err := e.newTokenizer()
			if err != nil {
				e.console.Debugf("token counting falls back to estimates: %v", err)
			}
			actorOpts.Tokenizer = tok
		}
		actor = act.New(page, llm.WithModel(e.provider, e.config.ActModel), actorOpts)
	}

	classifier := e.opts.Classifier
	if classifier == nil {
		classifier = quiz.MarkerClassifier(quiz.DefaultModalityMarkers())
	}

	dispatcher := quiz.NewDispatcher(e.opts.Dispatcher, actor, e.logger)
	for m, strategy := range e.opts.Strategies {
		dispatcher.SetStrategy(m, strategy)
	}

	return quiz.NewRunner(
		quiz.NewLocator(e.opts.Locator, e.logger),
		quiz.NewExtractor(e.opts.Markers, classifier, e.logger),
		dispatcher,
		actor,
		e.logger,
		quiz.RunnerOptions{
			ProceedOnSettleTimeout: e.opts.ProceedOnSettleTimeout,
			SkipSubmit:             e.config.SkipSubmit || e.config.DryRun(),
		},
	)
}

func (e *Executor) writeArtifacts(summary *ExecutionSummary) {
	if e.artifactWriter == nil {
		return
	}
	if err := e.artifactWriter.WriteAll(summary); err != nil {
		e.console.Warningf("failed to write artifacts: %v", err)
		return
	}
	e.console.Verbosef("Artifacts written to %s", e.artifactWriter.Dir())
}
