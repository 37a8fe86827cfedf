package quiz

import "sync"

// Level is the severity of a log entry.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Log categories used by the core.
const (
	CategoryLocator    = "locator"
	CategoryExtractor  = "extractor"
	CategoryDispatcher = "dispatcher"
	CategoryRunner     = "runner"
)

// Entry is a single structured log record.
type Entry struct {
	Category  string
	Message   string
	Level     Level
	Auxiliary map[string]any
}

// Logger receives structured log entries. Implementations must not fail or
// block for long; logging is fire-and-forget.
type Logger interface {
	Log(entry Entry)
}

// NopLogger discards every entry.
type NopLogger struct{}

// Log does nothing.
func (NopLogger) Log(Entry) {}

// RecordingLogger keeps every entry in memory.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// Log records the entry.
func (r *RecordingLogger) Log(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of the recorded entries.
func (r *RecordingLogger) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find returns the recorded entries with the given category and level.
func (r *RecordingLogger) Find(category string, level Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Category == category && e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func logOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
