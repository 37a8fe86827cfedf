package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/quizpilot/pkg/types"
	"github.com/google/uuid"
)

// State is a step of the run state machine.
type State string

const (
	StateIdle       State = "idle"
	StateNavigated  State = "navigated"
	StateSettling   State = "settling"
	StateAnalyzing  State = "analyzing"
	StateAnswering  State = "answering"
	StateSubmitting State = "submitting"
	StateConfirming State = "confirming"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

const (
	// SubmitInstruction is issued once every question has been handled.
	SubmitInstruction = "Submit the quiz."
	// ConfirmInstruction accepts a confirmation dialog after submitting.
	ConfirmInstruction = "Confirm the submission if a confirmation dialog is shown."
)

// EventHandler receives run events. It is called synchronously.
type EventHandler func(*types.RunEvent)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// ProceedOnSettleTimeout keeps going on a frame that did not go idle.
	ProceedOnSettleTimeout bool

	// SkipSubmit stops after answering, without submission instructions.
	SkipSubmit bool
}

// InstructionStatus records a best-effort instruction.
type InstructionStatus struct {
	Instruction string `json:"instruction"`
	Issued      bool   `json:"issued"`
	Action      string `json:"action,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Result summarises a run.
type Result struct {
	RunID       string             `json:"run_id"`
	URL         string             `json:"url"`
	DocumentURL string             `json:"document_url"`
	Embedded    bool               `json:"embedded"`
	State       State              `json:"state"`
	States      []State            `json:"states"`
	Questions   []Question         `json:"questions"`
	Attempts    []*Attempt         `json:"attempts"`
	Submit      *InstructionStatus `json:"submit,omitempty"`
	Confirm     *InstructionStatus `json:"confirm,omitempty"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Error       string             `json:"error,omitempty"`
}

// Answered returns how many questions were handled by each path.
func (r *Result) Answered() map[AnswerPath]int {
	counts := make(map[AnswerPath]int, 3)
	for _, a := range r.Attempts {
		counts[a.Path]++
	}
	return counts
}

// Runner sequences a whole quiz run.
type Runner struct {
	locator    *Locator
	extractor  *Extractor
	dispatcher *Dispatcher
	actor      Actor
	logger     Logger
	opts       RunnerOptions
	handlers   []EventHandler
}

// NewRunner wires the components of a run. actor issues the submission
// instructions and may be nil when SkipSubmit is set.
func NewRunner(locator *Locator, extractor *Extractor, dispatcher *Dispatcher, actor Actor, logger Logger, opts RunnerOptions) *Runner {
	return &Runner{
		locator:    locator,
		extractor:  extractor,
		dispatcher: dispatcher,
		actor:      actor,
		logger:     logOrNop(logger),
		opts:       opts,
	}
}

// OnEvent registers an event handler.
func (r *Runner) OnEvent(h EventHandler) {
	r.handlers = append(r.handlers, h)
}

func (r *Runner) emit(e *types.RunEvent) {
	for _, h := range r.handlers {
		h(e)
	}
}

func (r *Runner) enter(res *Result, s State) {
	res.State = s
	res.States = append(res.States, s)
	r.emit(types.NewStateChangeEvent(res.RunID, string(s)))
}

// Run navigates page to url and completes the quiz found there.
//
// The returned Result is always non-nil. An error is returned when navigation,
// location or analysis failed; per-question failures are only recorded.
func (r *Runner) Run(ctx context.Context, page Page, url string) (*Result, error) {
	res := &Result{
		RunID:     uuid.New().String(),
		URL:       url,
		StartTime: time.Now(),
		Attempts:  []*Attempt{},
	}
	res.States = []State{StateIdle}
	res.State = StateIdle
	r.emit(types.NewRunStartEvent(res.RunID, url))

	err := r.run(ctx, page, url, res)
	res.EndTime = time.Now()
	if err != nil {
		failedIn := res.State
		res.Error = err.Error()
		r.enter(res, StateFailed)
		r.logger.Log(Entry{
			Category: CategoryRunner,
			Message:  "run failed",
			Level:    LevelError,
			Auxiliary: map[string]any{
				"state": string(failedIn),
				"error": err.Error(),
			},
		})
		r.emit(types.NewRunFailedEvent(res.RunID, string(failedIn), err))
		return res, err
	}

	r.emit(types.NewRunCompleteEvent(res.RunID, len(res.Questions)))
	return res, nil
}

func (r *Runner) run(ctx context.Context, page Page, url string, res *Result) error {
	if err := page.Goto(ctx, url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	r.enter(res, StateNavigated)

	r.enter(res, StateSettling)
	loc, err := r.locator.Locate(ctx, page)
	if err != nil {
		var settleErr *NetworkSettleTimeoutError
		if !errors.As(err, &settleErr) || !r.opts.ProceedOnSettleTimeout || loc == nil {
			return err
		}
		r.logger.Log(Entry{
			Category: CategoryRunner,
			Message:  "proceeding on a document that did not settle",
			Level:    LevelWarn,
			Auxiliary: map[string]any{
				"url": settleErr.URL,
			},
		})
	}
	doc := loc.Document
	res.DocumentURL = doc.URL()
	res.Embedded = loc.Embedded
	r.emit(types.NewDocumentLocatedEvent(res.RunID, res.DocumentURL, loc.Embedded))

	r.enter(res, StateAnalyzing)
	questions, err := r.extractor.Extract(ctx, doc)
	if err != nil {
		return err
	}
	res.Questions = questions
	r.emit(types.NewQuestionsExtractedEvent(res.RunID, len(questions)))
	if len(questions) == 0 {
		r.logger.Log(Entry{
			Category: CategoryRunner,
			Message:  "no questions found",
			Level:    LevelWarn,
			Auxiliary: map[string]any{
				"url": res.DocumentURL,
			},
		})
	}

	r.enter(res, StateAnswering)
	total := len(questions)
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted at question %d: %w", i, err)
		}
		r.emit(types.NewQuestionStartEvent(res.RunID, i, total, q.Info()))
		attempt := r.dispatcher.Answer(ctx, doc, q)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Path == PathAbandoned {
			r.emit(types.NewQuestionAbandonedEvent(res.RunID, i, total, q.Info(), attempt.Err))
			continue
		}
		r.emit(types.NewQuestionAnsweredEvent(res.RunID, i, total, q.Info(), string(attempt.Path)))
	}

	if r.opts.SkipSubmit {
		r.enter(res, StateDone)
		return nil
	}

	r.enter(res, StateSubmitting)
	res.Submit = r.instruct(ctx, res.RunID, SubmitInstruction)

	r.enter(res, StateConfirming)
	res.Confirm = r.instruct(ctx, res.RunID, ConfirmInstruction)

	r.enter(res, StateDone)
	return nil
}

// instruct issues a best-effort instruction. Its outcome is recorded and
// never fails the run.
func (r *Runner) instruct(ctx context.Context, runID, instruction string) *InstructionStatus {
	status := &InstructionStatus{Instruction: instruction}
	if r.actor == nil {
		status.Error = "no actor configured"
		r.emit(types.NewInstructionIssuedEvent(runID, instruction, false, errors.New(status.Error)))
		return status
	}

	res, err := r.actor.Act(ctx, instruction)
	status.Issued = res.Issued
	status.Action = res.Action
	if err != nil {
		status.Error = err.Error()
		r.logger.Log(Entry{
			Category: CategoryRunner,
			Message:  "instruction failed",
			Level:    LevelWarn,
			Auxiliary: map[string]any{
				"instruction": instruction,
				"error":       err.Error(),
			},
		})
	}
	r.emit(types.NewInstructionIssuedEvent(runID, instruction, status.Issued, err))
	return status
}
