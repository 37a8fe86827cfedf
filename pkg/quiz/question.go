package quiz

import (
	"fmt"
	"strings"

	"github.com/entrhq/quizpilot/pkg/types"
)

// Modality is the closed classification of a question's expected input shape.
type Modality string

const (
	ModalityMultipleChoice Modality = "multiple_choice"
	ModalityWritten        Modality = "written"
	ModalityTrueFalse      Modality = "true_false"
	ModalityMatching       Modality = "matching"
)

// Modalities lists every modality.
var Modalities = []Modality{
	ModalityMultipleChoice,
	ModalityWritten,
	ModalityTrueFalse,
	ModalityMatching,
}

// ParseModality converts a string into a Modality.
func ParseModality(s string) (Modality, error) {
	m := Modality(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modalities {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown modality: %q", s)
}

// Question is the unit of work of a run.
//
// Questions are created once by the Extractor and are read-only afterwards.
// Modality never changes after extraction.
type Question struct {
	Modality Modality `json:"modality"`

	// Text is the prompt with whitespace runs collapsed. Empty when the block
	// had no prompt element; such questions are kept, not dropped.
	Text string `json:"text"`

	// Repeat counts earlier questions in the same document with the same
	// prompt. It picks which occurrence of the prompt anchors the answer.
	Repeat int `json:"repeat,omitempty"`

	// Options are the option labels in document order. For matching questions
	// they are the matchable item labels.
	Options []string `json:"options"`

	// Answer is advisory. Extraction leaves it empty; the Dispatcher reports
	// what it resolved through Attempt.Answer instead of writing here.
	Answer string `json:"answer,omitempty"`
}

// Info returns the event-facing view of the question.
func (q Question) Info() *types.QuestionInfo {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return &types.QuestionInfo{
		Modality: string(q.Modality),
		Text:     q.Text,
		Options:  opts,
	}
}

// NormalizeSpace trims s and collapses runs of XML whitespace to one space,
// the way XPath normalize-space() does.
func NormalizeSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isXMLSpace), " ")
}

func isXMLSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
