package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/quizpilot/pkg/types"
)

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only critical information (errors, warnings, final summary)
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows standard execution progress (default)
	LogLevelNormal
	// LogLevelVerbose shows detailed execution information
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
	warnYellow  = lipgloss.Color("#FDE68A")
	errorRed    = lipgloss.Color("#F87171")
	accentCyan  = lipgloss.Color("#67E8F9")
)

// styles holds the console styles bound to one renderer.
type styles struct {
	header  lipgloss.Style
	section lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(brightWhite),
		section: r.NewStyle().Foreground(accentCyan),
		info:    r.NewStyle().Foreground(salmonPink),
		success: r.NewStyle().Bold(true).Foreground(mintGreen),
		warning: r.NewStyle().Foreground(warnYellow),
		failure: r.NewStyle().Bold(true).Foreground(errorRed),
		muted:   r.NewStyle().Foreground(mutedGray),
	}
}

// Logger prints run progress to the console
type Logger struct {
	level  LogLevel
	writer io.Writer
	style  styles

	startTime time.Time
}

// NewLogger creates a new logger with the specified level writing to stdout
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w. Colors are only emitted
// when w is a terminal.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:     level,
		writer:    w,
		style:     newStyles(lipgloss.NewRenderer(w)),
		startTime: time.Now(),
	}
}

func (l *Logger) println(style lipgloss.Style, msg string) {
	fmt.Fprintln(l.writer, style.Render(msg))
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintln(l.writer)
		l.println(l.style.header, rule)
		l.println(l.style.header, "  "+message)
		l.println(l.style.header, rule)
	}
}

// Section prints a section divider
func (l *Logger) Section(title string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintln(l.writer)
		l.println(l.style.section, "▶ "+title)
		l.println(l.style.muted, strings.Repeat("─", 50))
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...any) {
	if l.level >= LogLevelNormal {
		l.println(l.style.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...any) {
	if l.level >= LogLevelNormal {
		l.println(l.style.info, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.println(l.style.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...any) {
	l.println(l.style.failure, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...any) {
	if l.level >= LogLevelVerbose {
		l.println(l.style.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...any) {
	if l.level >= LogLevelDebug {
		l.println(l.style.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// HandleEvent renders a runner event. It is registered with Runner.OnEvent.
func (l *Logger) HandleEvent(e *types.RunEvent) {
	switch e.Type {
	case types.EventTypeRunStart:
		l.Infof("Opening %s", e.Content)
	case types.EventTypeStateChange:
		l.Debugf("state → %s", e.State)
	case types.EventTypeDocumentLocated:
		if embedded, _ := e.Metadata["embedded"].(bool); embedded {
			l.Successf("Quiz frame: %s", e.Content)
		} else {
			l.Successf("No quiz frame matched, using the page: %s", e.Content)
		}
	case types.EventTypeQuestionsExtracted:
		l.Section(fmt.Sprintf("Answering %d question%s", e.Total, plural(e.Total)))
	case types.EventTypeQuestionStart:
		if e.Question != nil {
			l.Verbosef("[%d/%d] %s: %s", e.Index+1, e.Total, e.Question.Modality, label(e.Question.Text))
		}
	case types.EventTypeQuestionAnswered:
		if l.level >= LogLevelNormal {
			l.println(l.style.success, fmt.Sprintf("  ✓ [%d/%d] %s (%s)", e.Index+1, e.Total, questionLabel(e), e.Content))
		}
	case types.EventTypeQuestionAbandoned:
		l.Warningf("[%d/%d] %s skipped: %v", e.Index+1, e.Total, questionLabel(e), e.Error)
	case types.EventTypeInstructionIssued:
		issued, _ := e.Metadata["issued"].(bool)
		switch {
		case e.Error != nil:
			l.Warningf("%s %v", e.Content, e.Error)
		case issued:
			l.Successf("%s", e.Content)
		default:
			l.Warningf("%s not issued", e.Content)
		}
	case types.EventTypeRunComplete:
		l.Debugf("run %s complete", e.RunID)
	case types.EventTypeRunFailed:
		l.Errorf("run failed while %s: %v", e.State, e.Error)
	}
}

// Summary prints a final execution summary
func (l *Logger) Summary(summary *ExecutionSummary) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(l.writer)
	l.println(l.style.header, rule)
	l.println(l.style.header, "  RUN SUMMARY")
	l.println(l.style.header, rule)

	fmt.Fprint(l.writer, "  Status: ")
	switch summary.Status {
	case statusSuccess:
		l.println(l.style.success, "✓ SUCCESS")
	case statusPartialSuccess:
		l.println(l.style.warning, "⚠ PARTIAL SUCCESS")
	case statusFailed:
		l.println(l.style.failure, "✗ FAILED")
	default:
		fmt.Fprintln(l.writer, summary.Status)
	}

	fmt.Fprintf(l.writer, "  URL: %s\n", summary.URL)
	if summary.DryRun {
		fmt.Fprintln(l.writer, "  Mode: dry run")
	}
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Millisecond))

	m := summary.Metrics
	fmt.Fprintf(l.writer, "\n  Questions: %d (primary %d, fallback %d, abandoned %d)\n",
		m.Questions, m.Primary, m.Fallback, m.Abandoned)

	if l.level >= LogLevelVerbose && len(summary.Interactions) > 0 {
		fmt.Fprintln(l.writer, "\n  Recorded interactions:")
		for _, action := range summary.Interactions {
			l.println(l.style.muted, "    • "+action)
		}
	}

	if summary.Error != "" {
		fmt.Fprintln(l.writer)
		l.println(l.style.failure, "  Error Details:")
		l.println(l.style.failure, "    "+summary.Error)
	}
	l.println(l.style.header, rule)
	fmt.Fprintln(l.writer)
}

// parseLogLevel converts a string log level to LogLevel type
func parseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

func questionLabel(e *types.RunEvent) string {
	if e.Question == nil {
		return "(unknown)"
	}
	return label(e.Question.Text)
}

func label(text string) string {
	if text == "" {
		return "(no prompt)"
	}
	const maxLabel = 60
	if r := []rune(text); len(r) > maxLabel {
		return string(r[:maxLabel]) + "..."
	}
	return text
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
