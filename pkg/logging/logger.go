package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/entrhq/quizpilot/pkg/quiz"
)

const (
	// MaxSizeMB is the size at which a session log is rotated.
	MaxSizeMB = 20
	// MaxBackups is the number of rotated files kept per session.
	MaxBackups = 3
)

// Logger writes structured entries for one component to the session log in
// ~/.quizpilot/logs/. It implements quiz.Logger.
//
// Entries at LevelDebug are dropped unless the logger is verbose.
type Logger struct {
	sessionID string
	component string
	out       io.WriteCloser
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	verbose   bool
	closeOnce sync.Once
}

var _ quiz.Logger = (*Logger)(nil)

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	initOnce sync.Once
	initErr  error

	// writers shares one rotating writer per log file across components.
	writers   = make(map[string]*sharedWriter)
	writersMu sync.Mutex
)

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".quizpilot", "logs")
		}
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// sharedWriter reference-counts a lumberjack writer so that each component's
// Close only releases its own handle.
type sharedWriter struct {
	path string
	lj   *lumberjack.Logger
	refs int
}

func (w *sharedWriter) Write(p []byte) (int, error) {
	return w.lj.Write(p)
}

func (w *sharedWriter) Close() error {
	writersMu.Lock()
	defer writersMu.Unlock()
	w.refs--
	if w.refs > 0 {
		return nil
	}
	delete(writers, w.path)
	return w.lj.Close()
}

func openWriter(path string) (*sharedWriter, error) {
	writersMu.Lock()
	defer writersMu.Unlock()

	if w, ok := writers[path]; ok {
		w.refs++
		return w, nil
	}

	// Create the file up front so permission problems surface here
	// rather than on the first write.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	f.Close()

	w := &sharedWriter{
		path: path,
		lj: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			LocalTime:  true,
		},
		refs: 1,
	}
	writers[path] = w
	return w, nil
}

// NewLogger creates a new logger for a specific component.
// The logger writes to ~/.quizpilot/logs/<session-id>-quizpilot.log
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
// Callers can check the error to detect fallback mode and log warnings.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-quizpilot.log", sessID))

	w, err := openWriter(logPath)
	if err != nil {
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		out:       w,
		logger:    log.New(w, "", 0), // We'll format timestamps ourselves
		logPath:   logPath,
	}, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, "", 0)
	l := &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    logger,
	}
	l.logger.Println(l.formatLogEntry("WARN", fmt.Sprintf("failed to initialize file logging, falling back to stderr: %v", err)))
	return l
}

// SetVerbose enables debug entries.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// formatLogEntry creates a structured log entry with timestamp, component, and level
func (l *Logger) formatLogEntry(level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

// formatFields renders fields as key=value pairs sorted by key.
func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if strings.ContainsAny(v, " \t\n\"=") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

func (l *Logger) write(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(l.formatLogEntry(level, message))
}

// Log writes a quiz entry. The entry's category replaces the component name
// when set.
func (l *Logger) Log(entry quiz.Entry) {
	if entry.Level == quiz.LevelDebug && !l.isVerbose() {
		return
	}

	component := l.component
	if entry.Category != "" {
		component = entry.Category
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s%s", timestamp, component, entry.Level, entry.Message, formatFields(entry.Auxiliary))
}

func (l *Logger) isVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...any) {
	if !l.isVerbose() {
		return
	}
	l.write("DEBUG", fmt.Sprintf(format, v...))
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...any) {
	l.write("INFO", fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...any) {
	l.write("WARN", fmt.Sprintf(format, v...))
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...any) {
	l.write("ERROR", fmt.Sprintf(format, v...))
}

// Writer returns an io.Writer that writes to this logger's destination.
func (l *Logger) Writer() io.Writer {
	if l.out != nil {
		return l.out
	}
	return os.Stderr
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, empty in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close releases the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.out != nil {
			err = l.out.Close()
		}
	})
	return err
}

// GetLogDirectory returns the log directory path
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
