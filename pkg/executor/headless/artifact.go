package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/quizpilot/pkg/quiz"
)

const (
	statusSuccess        = "success"
	statusFailed         = "failed"
	statusPartialSuccess = "partial_success"
)

// ExecutionSummary contains a complete summary of one quiz run
type ExecutionSummary struct {
	RunID        string                  `json:"run_id"`
	URL          string                  `json:"url"`
	DocumentURL  string                  `json:"document_url,omitempty"`
	Embedded     bool                    `json:"embedded"`
	DryRun       bool                    `json:"dry_run"`
	Status       string                  `json:"status"`
	State        string                  `json:"state"`
	States       []string                `json:"states"`
	Error        string                  `json:"error,omitempty"`
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	Duration     time.Duration           `json:"duration"`
	Questions    []QuestionSummary       `json:"questions"`
	Metrics      ExecutionMetrics        `json:"metrics"`
	Submit       *quiz.InstructionStatus `json:"submit,omitempty"`
	Confirm      *quiz.InstructionStatus `json:"confirm,omitempty"`
	Interactions []string                `json:"interactions,omitempty"`
}

// QuestionSummary is the outcome of one question
type QuestionSummary struct {
	Index    int      `json:"index"`
	Modality string   `json:"modality"`
	Text     string   `json:"text"`
	Options  []string `json:"options,omitempty"`
	Path     string   `json:"path"`
	Answer   string   `json:"answer,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ExecutionMetrics counts questions by answer path
type ExecutionMetrics struct {
	Questions int `json:"questions"`
	Primary   int `json:"primary"`
	Fallback  int `json:"fallback"`
	Abandoned int `json:"abandoned"`
}

// NewExecutionSummary builds a summary from a run result.
func NewExecutionSummary(res *quiz.Result) *ExecutionSummary {
	summary := &ExecutionSummary{
		RunID:       res.RunID,
		URL:         res.URL,
		DocumentURL: res.DocumentURL,
		Embedded:    res.Embedded,
		State:       string(res.State),
		Error:       res.Error,
		StartTime:   res.StartTime,
		EndTime:     res.EndTime,
		Duration:    res.EndTime.Sub(res.StartTime),
		Submit:      res.Submit,
		Confirm:     res.Confirm,
		Questions:   []QuestionSummary{},
	}
	for _, s := range res.States {
		summary.States = append(summary.States, string(s))
	}

	for i, a := range res.Attempts {
		qs := QuestionSummary{
			Index:    i,
			Modality: string(a.Question.Modality),
			Text:     a.Question.Text,
			Options:  a.Question.Options,
			Path:     string(a.Path),
			Answer:   a.Answer,
		}
		if a.Err != nil {
			qs.Error = a.Err.Error()
		}
		summary.Questions = append(summary.Questions, qs)
	}

	counts := res.Answered()
	summary.Metrics = ExecutionMetrics{
		Questions: len(res.Questions),
		Primary:   counts[quiz.PathPrimary],
		Fallback:  counts[quiz.PathFallback],
		Abandoned: counts[quiz.PathAbandoned],
	}

	switch {
	case res.State != quiz.StateDone:
		summary.Status = statusFailed
	case summary.Metrics.Abandoned > 0:
		summary.Status = statusPartialSuccess
	default:
		summary.Status = statusSuccess
	}
	return summary
}

// ArtifactWriter handles writing execution artifacts
type ArtifactWriter struct {
	outputDir string
	config    ArtifactConfig
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string, config ArtifactConfig) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
		config:    config,
	}
}

// Dir returns the directory artifacts are written to.
func (w *ArtifactWriter) Dir() string {
	return w.outputDir
}

// WriteAll writes all configured artifact formats
func (w *ArtifactWriter) WriteAll(summary *ExecutionSummary) error {
	if err := os.MkdirAll(w.outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if w.config.JSON {
		if err := w.WriteExecutionJSON(summary); err != nil {
			return err
		}
	}

	if w.config.Markdown {
		if err := w.WriteSummaryMarkdown(summary); err != nil {
			return err
		}
	}

	return nil
}

// WriteExecutionJSON writes the full execution summary as JSON
func (w *ArtifactWriter) WriteExecutionJSON(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "execution.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write execution JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	if writeErr := os.WriteFile(path, []byte(renderMarkdown(summary)), 0o600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}

func renderMarkdown(summary *ExecutionSummary) string {
	var md strings.Builder

	md.WriteString("# QuizPilot Run Summary\n\n")
	fmt.Fprintf(&md, "**URL:** %s\n\n", summary.URL)
	if summary.DocumentURL != "" && summary.DocumentURL != summary.URL {
		fmt.Fprintf(&md, "**Quiz document:** %s\n\n", summary.DocumentURL)
	}
	fmt.Fprintf(&md, "**Status:** %s\n\n", summary.Status)
	if summary.DryRun {
		md.WriteString("**Mode:** dry run\n\n")
	}
	fmt.Fprintf(&md, "**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&md, "**Duration:** %s\n\n", summary.Duration)

	md.WriteString("## Result\n\n")
	if summary.Error != "" {
		fmt.Fprintf(&md, "❌ **Error:** %s\n\n", summary.Error)
	} else {
		fmt.Fprintf(&md, "✅ **Finished in state %s**\n\n", summary.State)
	}

	if len(summary.Questions) > 0 {
		md.WriteString("## Questions\n\n")
		md.WriteString("| # | Modality | Question | Path |\n")
		md.WriteString("|---|---|---|---|\n")
		for _, q := range summary.Questions {
			text := q.Text
			if text == "" {
				text = "(no prompt)"
			}
			fmt.Fprintf(&md, "| %d | %s | %s | %s |\n", q.Index+1, q.Modality, escapeCell(text), q.Path)
		}
		md.WriteString("\n")
	}

	if summary.Submit != nil || summary.Confirm != nil {
		md.WriteString("## Submission\n\n")
		for _, status := range []*quiz.InstructionStatus{summary.Submit, summary.Confirm} {
			if status == nil {
				continue
			}
			mark := "✅"
			if !status.Issued || status.Error != "" {
				mark = "⚠️"
			}
			fmt.Fprintf(&md, "%s %s", mark, status.Instruction)
			if status.Error != "" {
				fmt.Fprintf(&md, " (%s)", status.Error)
			}
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}

	if len(summary.Interactions) > 0 {
		md.WriteString("## Recorded Interactions\n\n")
		for _, action := range summary.Interactions {
			fmt.Fprintf(&md, "- `%s`\n", action)
		}
		md.WriteString("\n")
	}

	md.WriteString("## Metrics\n\n")
	fmt.Fprintf(&md, "- **Questions:** %d\n", summary.Metrics.Questions)
	fmt.Fprintf(&md, "- **Primary:** %d\n", summary.Metrics.Primary)
	fmt.Fprintf(&md, "- **Fallback:** %d\n", summary.Metrics.Fallback)
	fmt.Fprintf(&md, "- **Abandoned:** %d\n", summary.Metrics.Abandoned)

	return md.String()
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
