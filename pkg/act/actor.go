// Package act carries out natural-language instructions on a page with a
// language model.
//
// The Actor snapshots the page and every embedded frame, asks the model for
// a short plan of clicks and fills, and runs that plan through the quiz
// capability interfaces. It backs the dispatcher's fallback path and the
// runner's submission instructions.
package act

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/quizpilot/pkg/browser"
	"github.com/entrhq/quizpilot/pkg/llm"
	"github.com/entrhq/quizpilot/pkg/llm/tokenizer"
	"github.com/entrhq/quizpilot/pkg/quiz"
	"github.com/entrhq/quizpilot/pkg/types"
)

// Category is the log category of the actor.
const Category = "actor"

const (
	DefaultMaxSnapshotTokens = 12000
	DefaultMaxPromptTokens   = 16000
	DefaultMaxSteps          = 8
	DefaultStepPause         = 250 * time.Millisecond
)

// Options configures an Actor.
type Options struct {
	Profile Profile

	// Tokenizer budgets the snapshot. Nil approximates.
	Tokenizer *tokenizer.Tokenizer

	// MaxSnapshotTokens is shared evenly by the page and its frames.
	MaxSnapshotTokens int

	// MaxPromptTokens bounds the whole request. Snapshots are cut further
	// when the prompts and instruction leave less than MaxSnapshotTokens.
	MaxPromptTokens int

	// MaxSteps caps how many steps of a plan are run.
	MaxSteps int

	// StepPause is waited between steps.
	StepPause time.Duration

	Logger quiz.Logger
}

// DefaultOptions returns the default budgets and pause.
func DefaultOptions() Options {
	return Options{
		MaxSnapshotTokens: DefaultMaxSnapshotTokens,
		MaxPromptTokens:   DefaultMaxPromptTokens,
		MaxSteps:          DefaultMaxSteps,
		StepPause:         DefaultStepPause,
	}
}

// Actor implements quiz.Actor with an LLM planner.
type Actor struct {
	page     quiz.Page
	provider llm.Provider
	opts     Options
	logger   quiz.Logger
}

var _ quiz.Actor = (*Actor)(nil)

// New creates an Actor for page.
func New(page quiz.Page, provider llm.Provider, opts Options) *Actor {
	if opts.MaxSnapshotTokens <= 0 {
		opts.MaxSnapshotTokens = DefaultMaxSnapshotTokens
	}
	if opts.MaxPromptTokens <= 0 {
		opts.MaxPromptTokens = DefaultMaxPromptTokens
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	logger := opts.Logger
	if logger == nil {
		logger = quiz.NopLogger{}
	}
	return &Actor{page: page, provider: provider, opts: opts, logger: logger}
}

// Act plans and performs instruction.
//
// Issued is set once the model returned a valid plan, whether or not its
// steps then succeed. A plan without steps yields a *NoActionError.
func (a *Actor) Act(ctx context.Context, instruction string) (quiz.ActResult, error) {
	res := quiz.ActResult{Instruction: instruction}

	docs := append([]quiz.Document{a.page}, a.page.Frames()...)
	budget, err := a.snapshotBudget(instruction, len(docs))
	if err != nil {
		return res, err
	}
	snaps, err := a.snapshot(ctx, docs, budget)
	if err != nil {
		return res, err
	}

	messages := a.messages(instruction, snaps)
	a.logger.Log(quiz.Entry{
		Category: Category,
		Message:  "planning",
		Level:    quiz.LevelDebug,
		Auxiliary: map[string]any{
			"instruction":   instruction,
			"documents":     len(snaps),
			"prompt_tokens": a.opts.Tokenizer.CountMessagesTokens(messages),
		},
	})

	reply, err := a.provider.Complete(ctx, messages)
	if err != nil {
		return res, fmt.Errorf("planning failed: %w", err)
	}

	plan, err := ParsePlan(reply.Content)
	if err != nil {
		a.logger.Log(quiz.Entry{
			Category: Category,
			Message:  "unusable plan",
			Level:    quiz.LevelWarn,
			Auxiliary: map[string]any{
				"instruction": instruction,
				"reply":       reply.Content,
				"error":       err.Error(),
			},
		})
		return res, err
	}
	res.Issued = true

	if len(plan.Steps) == 0 {
		res.Action = "none"
		return res, &NoActionError{Reason: plan.Reason}
	}

	steps := plan.Steps
	if len(steps) > a.opts.MaxSteps {
		steps = steps[:a.opts.MaxSteps]
	}

	done := make([]string, 0, len(steps))
	for i, step := range steps {
		if i > 0 {
			if err := quiz.Sleep(ctx, a.opts.StepPause); err != nil {
				res.Action = strings.Join(done, "; ")
				return res, err
			}
		}
		if err := a.perform(ctx, docs, step); err != nil {
			res.Action = strings.Join(done, "; ")
			return res, fmt.Errorf("step %d (%s) failed: %w", i, step, err)
		}
		done = append(done, step.String())
		a.logger.Log(quiz.Entry{
			Category: Category,
			Message:  "performed step",
			Level:    quiz.LevelDebug,
			Auxiliary: map[string]any{
				"instruction": instruction,
				"step":        step.String(),
			},
		})
	}
	res.Action = strings.Join(done, "; ")
	return res, nil
}

func (a *Actor) perform(ctx context.Context, docs []quiz.Document, step Step) error {
	if step.Frame >= len(docs) {
		return fmt.Errorf("frame %d does not exist", step.Frame)
	}
	el := docs[step.Frame].Locate(step.Selector).First()
	if step.Action == ActionFill {
		return el.Fill(ctx, step.Value)
	}
	return el.Click(ctx)
}

func (a *Actor) messages(instruction string, snaps []documentSnapshot) []*types.Message {
	return []*types.Message{
		types.NewSystemMessage(systemPrompt(a.opts.Profile)),
		types.NewUserMessage(userPrompt(instruction, snaps)),
	}
}

// snapshotBudget returns the per-document token budget: MaxSnapshotTokens,
// reduced to what MaxPromptTokens leaves after the prompts themselves.
func (a *Actor) snapshotBudget(instruction string, docs int) (int, error) {
	total := a.opts.MaxSnapshotTokens
	base := a.opts.Tokenizer.CountMessagesTokens(a.messages(instruction, nil))
	if left := a.opts.MaxPromptTokens - base; left < total {
		total = left
	}
	if total < docs {
		return 0, fmt.Errorf("prompt uses %d of %d tokens, leaving no room for page snapshots", base, a.opts.MaxPromptTokens)
	}
	return total / docs, nil
}

// snapshot cleans and budgets every document. A frame that cannot be read is
// left out; the page itself must be readable.
func (a *Actor) snapshot(ctx context.Context, docs []quiz.Document, budget int) ([]documentSnapshot, error) {
	out := make([]documentSnapshot, 0, len(docs))
	for i, doc := range docs {
		content, err := doc.Content(ctx)
		if err == nil {
			var cleaned *browser.CleanedHTML
			cleaned, err = browser.CleanHTML(content, 0)
			if err == nil {
				text, truncated := a.opts.Tokenizer.Truncate(cleaned.HTML, budget)
				out = append(out, documentSnapshot{index: i, url: doc.URL(), html: text, truncated: truncated})
				continue
			}
		}
		if i == 0 {
			return nil, fmt.Errorf("failed to snapshot page: %w", err)
		}
		a.logger.Log(quiz.Entry{
			Category: Category,
			Message:  "skipping unreadable frame",
			Level:    quiz.LevelWarn,
			Auxiliary: map[string]any{
				"url":   doc.URL(),
				"error": err.Error(),
			},
		})
	}
	return out, nil
}
