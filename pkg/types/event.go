package types

import "time"

// RunEventType defines the type of event emitted by the quiz runner.
type RunEventType string

const (
	EventTypeRunStart           RunEventType = "run_start"           // EventTypeRunStart indicates a run has begun.
	EventTypeStateChange        RunEventType = "state_change"        // EventTypeStateChange indicates the runner moved to a new state.
	EventTypeDocumentLocated    RunEventType = "document_located"    // EventTypeDocumentLocated indicates the working document was fixed.
	EventTypeQuestionsExtracted RunEventType = "questions_extracted" // EventTypeQuestionsExtracted indicates the question list is known.
	EventTypeQuestionStart      RunEventType = "question_start"      // EventTypeQuestionStart indicates a question is about to be answered.
	EventTypeQuestionAnswered   RunEventType = "question_answered"   // EventTypeQuestionAnswered indicates a primary or fallback action went through.
	EventTypeQuestionAbandoned  RunEventType = "question_abandoned"  // EventTypeQuestionAbandoned indicates both answer paths failed.
	EventTypeInstructionIssued  RunEventType = "instruction_issued"  // EventTypeInstructionIssued indicates a natural-language instruction was sent.
	EventTypeRunComplete        RunEventType = "run_complete"        // EventTypeRunComplete indicates the run reached Done.
	EventTypeRunFailed          RunEventType = "run_failed"          // EventTypeRunFailed indicates the run stopped on an unrecoverable error.
)

// RunEvent represents an event emitted by the runner during execution.
type RunEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Error contains error information for failure events.
	Error error

	// Question holds a snapshot of the question for question events.
	Question *QuestionInfo

	// Time is when the event was created.
	Time time.Time

	// Type indicates the kind of event.
	Type RunEventType

	// RunID identifies the run that emitted the event.
	RunID string

	// State is the runner state for state change events.
	State string

	// Content holds free text: the URL, the instruction, or the answer path.
	Content string

	// Index is the zero-based question index for question events.
	Index int

	// Total is the number of questions in the run.
	Total int
}

// QuestionInfo is the event-facing view of a question.
type QuestionInfo struct {
	Modality string
	Text     string
	Options  []string
}

func newRunEvent(runID string, eventType RunEventType) *RunEvent {
	return &RunEvent{
		Type:     eventType,
		RunID:    runID,
		Time:     time.Now(),
		Metadata: make(map[string]interface{}),
	}
}

// NewRunStartEvent creates a run start event for the given URL.
func NewRunStartEvent(runID, url string) *RunEvent {
	e := newRunEvent(runID, EventTypeRunStart)
	e.Content = url
	return e
}

// NewStateChangeEvent creates a state change event.
func NewStateChangeEvent(runID, state string) *RunEvent {
	e := newRunEvent(runID, EventTypeStateChange)
	e.State = state
	return e
}

// NewDocumentLocatedEvent creates an event naming the working document URL.
func NewDocumentLocatedEvent(runID, url string, embedded bool) *RunEvent {
	e := newRunEvent(runID, EventTypeDocumentLocated)
	e.Content = url
	e.Metadata["embedded"] = embedded
	return e
}

// NewQuestionsExtractedEvent creates an event carrying the question count.
func NewQuestionsExtractedEvent(runID string, total int) *RunEvent {
	e := newRunEvent(runID, EventTypeQuestionsExtracted)
	e.Total = total
	return e
}

// NewQuestionStartEvent creates a question start event.
func NewQuestionStartEvent(runID string, index, total int, q *QuestionInfo) *RunEvent {
	e := newRunEvent(runID, EventTypeQuestionStart)
	e.Index = index
	e.Total = total
	e.Question = q
	return e
}

// NewQuestionAnsweredEvent creates an event for a question answered via path.
func NewQuestionAnsweredEvent(runID string, index, total int, q *QuestionInfo, path string) *RunEvent {
	e := newRunEvent(runID, EventTypeQuestionAnswered)
	e.Index = index
	e.Total = total
	e.Question = q
	e.Content = path
	return e
}

// NewQuestionAbandonedEvent creates an event for a question whose answer paths all failed.
func NewQuestionAbandonedEvent(runID string, index, total int, q *QuestionInfo, err error) *RunEvent {
	e := newRunEvent(runID, EventTypeQuestionAbandoned)
	e.Index = index
	e.Total = total
	e.Question = q
	e.Error = err
	return e
}

// NewInstructionIssuedEvent creates an event for a natural-language instruction.
// issued reports whether the instruction reached the action layer, not whether it worked.
func NewInstructionIssuedEvent(runID, instruction string, issued bool, err error) *RunEvent {
	e := newRunEvent(runID, EventTypeInstructionIssued)
	e.Content = instruction
	e.Error = err
	e.Metadata["issued"] = issued
	return e
}

// NewRunCompleteEvent creates a run complete event.
func NewRunCompleteEvent(runID string, total int) *RunEvent {
	e := newRunEvent(runID, EventTypeRunComplete)
	e.Total = total
	return e
}

// NewRunFailedEvent creates a run failed event.
func NewRunFailedEvent(runID, state string, err error) *RunEvent {
	e := newRunEvent(runID, EventTypeRunFailed)
	e.State = state
	e.Error = err
	return e
}

// WithMetadata adds metadata to an event.
func (e *RunEvent) WithMetadata(key string, value interface{}) *RunEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsQuestionEvent returns true if this is a per-question event.
func (e *RunEvent) IsQuestionEvent() bool {
	return e.Type == EventTypeQuestionStart ||
		e.Type == EventTypeQuestionAnswered ||
		e.Type == EventTypeQuestionAbandoned
}

// IsTerminalEvent returns true if the event ends a run.
func (e *RunEvent) IsTerminalEvent() bool {
	return e.Type == EventTypeRunComplete || e.Type == EventTypeRunFailed
}
