package headless

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/quizpilot/pkg/types"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level    LogLevel
		contains []string
		missing  []string
	}{
		{
			level:    LogLevelQuiet,
			contains: []string{"⚠ Warning: careful", "✗ Error: broken"},
			missing:  []string{"hello", "detail", "[DEBUG]"},
		},
		{
			level:    LogLevelNormal,
			contains: []string{"hello", "✓ done", "⚠ Warning: careful"},
			missing:  []string{"detail", "[DEBUG]"},
		},
		{
			level:    LogLevelVerbose,
			contains: []string{"→ detail"},
			missing:  []string{"[DEBUG]"},
		},
		{
			level:    LogLevelDebug,
			contains: []string{"[DEBUG] internals"},
		},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := NewLoggerWithWriter(tt.level, &buf)
		l.Infof("hello")
		l.Successf("done")
		l.Warningf("careful")
		l.Errorf("broken")
		l.Verbosef("detail")
		l.Debugf("internals")

		for _, s := range tt.contains {
			assert.Contains(t, buf.String(), s, "level %d", tt.level)
		}
		for _, s := range tt.missing {
			assert.NotContains(t, buf.String(), s, "level %d", tt.level)
		}
	}
}

func TestLogger_HandleEvent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(LogLevelVerbose, &buf)

	q := &types.QuestionInfo{Modality: "written", Text: "Why?"}
	for _, e := range []*types.RunEvent{
		types.NewRunStartEvent("r", "https://lms.example/course/7"),
		types.NewDocumentLocatedEvent("r", "https://lms.example/quiz/1", true),
		types.NewQuestionsExtractedEvent("r", 2),
		types.NewQuestionStartEvent("r", 0, 2, q),
		types.NewQuestionAnsweredEvent("r", 0, 2, q, "primary"),
		types.NewQuestionAbandonedEvent("r", 1, 2, &types.QuestionInfo{Modality: "matching"}, errors.New("no items")),
		types.NewInstructionIssuedEvent("r", "Submit the quiz.", true, nil),
		types.NewInstructionIssuedEvent("r", "Confirm.", true, errors.New("no action planned")),
		types.NewRunFailedEvent("r", "analyzing", errors.New("no quiz")),
	} {
		l.HandleEvent(e)
	}

	out := buf.String()
	assert.Contains(t, out, "Opening https://lms.example/course/7")
	assert.Contains(t, out, "Quiz frame: https://lms.example/quiz/1")
	assert.Contains(t, out, "▶ Answering 2 questions")
	assert.Contains(t, out, "→ [1/2] written: Why?")
	assert.Contains(t, out, "✓ [1/2] Why? (primary)")
	assert.Contains(t, out, "[2/2] (no prompt) skipped: no items")
	assert.Contains(t, out, "✓ Submit the quiz.")
	assert.Contains(t, out, "Confirm. no action planned")
	assert.Contains(t, out, "run failed while analyzing: no quiz")
	assert.NotContains(t, out, "state →")
}

func TestLogger_Summary(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(LogLevelVerbose, &buf)

	summary := &ExecutionSummary{
		URL:          "https://lms.example/course/7",
		Status:       statusFailed,
		DryRun:       true,
		Error:        "navigation failed",
		Metrics:      ExecutionMetrics{Questions: 2, Primary: 1, Abandoned: 1},
		Interactions: []string{"click input[name=q1]"},
	}
	l.Summary(summary)

	out := buf.String()
	assert.Contains(t, out, "RUN SUMMARY")
	assert.Contains(t, out, "✗ FAILED")
	assert.Contains(t, out, "Mode: dry run")
	assert.Contains(t, out, "Questions: 2 (primary 1, fallback 0, abandoned 1)")
	assert.Contains(t, out, "• click input[name=q1]")
	assert.Contains(t, out, "navigation failed")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "(no prompt)", label(""))
	assert.Equal(t, "short", label("short"))
	long := label(string(bytes.Repeat([]byte("é"), 70)))
	assert.Equal(t, 63, len([]rune(long)))
}
