package act

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Step actions.
const (
	ActionClick = "click"
	ActionFill  = "fill"
)

// Step is one element interaction chosen by the model.
type Step struct {
	// Frame indexes the documents listed in the prompt; 0 is the page itself.
	Frame    int    `json:"frame"`
	Action   string `json:"action"`
	Selector string `json:"selector"`
	Value    string `json:"value,omitempty"`
}

func (s Step) String() string {
	if s.Action == ActionFill {
		return fmt.Sprintf("fill %s in frame %d with %q", s.Selector, s.Frame, s.Value)
	}
	return fmt.Sprintf("%s %s in frame %d", s.Action, s.Selector, s.Frame)
}

// Plan is the model's answer to an instruction. An empty Steps list means
// nothing on the page matches the instruction.
type Plan struct {
	Steps  []Step `json:"steps"`
	Reason string `json:"reason,omitempty"`
}

// NoActionError reports a plan without steps.
type NoActionError struct {
	Reason string
}

func (e *NoActionError) Error() string {
	if e.Reason == "" {
		return "no action planned"
	}
	return "no action planned: " + e.Reason
}

// ParsePlan decodes a model reply. Markdown code fences and text around the
// JSON object are ignored.
func ParsePlan(reply string) (*Plan, error) {
	raw := extractJSONObject(reply)
	if raw == "" {
		return nil, errors.New("empty plan")
	}

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	for i, step := range plan.Steps {
		step.Action = strings.ToLower(strings.TrimSpace(step.Action))
		step.Selector = strings.TrimSpace(step.Selector)
		switch {
		case step.Action != ActionClick && step.Action != ActionFill:
			return nil, fmt.Errorf("step %d: unsupported action %q", i, step.Action)
		case step.Selector == "":
			return nil, fmt.Errorf("step %d: selector is required", i)
		case step.Frame < 0:
			return nil, fmt.Errorf("step %d: invalid frame %d", i, step.Frame)
		}
		plan.Steps[i] = step
	}
	return &plan, nil
}

func extractJSONObject(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
