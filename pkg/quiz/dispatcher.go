package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultBlockTimeout bounds the wait for a question block before answering.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultFallbackCooldown is paused between a failed primary path and the fallback.
	DefaultFallbackCooldown = 1 * time.Second

	// DefaultMatchingPause lets drag/drop or assignment widgets settle between selections.
	DefaultMatchingPause = 500 * time.Millisecond

	// DefaultPlaceholderAnswer is typed into written questions.
	DefaultPlaceholderAnswer = "This is a sample answer."
)

// AnswerPath names how a question was handled.
type AnswerPath string

const (
	PathPrimary   AnswerPath = "primary"
	PathFallback  AnswerPath = "fallback"
	PathAbandoned AnswerPath = "abandoned"
)

// StructuralPaths are XPath fragments appended to the prompt anchor to reach
// each modality's input elements.
type StructuralPaths struct {
	MultipleChoice string `json:"multiple_choice" yaml:"multiple_choice"`
	Written        string `json:"written" yaml:"written"`
	TrueFalse      string `json:"true_false" yaml:"true_false"`
	Matching       string `json:"matching" yaml:"matching"`
}

// DefaultStructuralPaths returns paths relative to the prompt's parent.
func DefaultStructuralPaths() StructuralPaths {
	return StructuralPaths{
		MultipleChoice: "/ancestor::*[1]//input[@type='radio' or @type='checkbox']",
		Written:        "/ancestor::*[1]//*[self::textarea or self::input[@type='text' or not(@type)]]",
		TrueFalse:      "/ancestor::*[1]//input[@type='radio']",
		Matching:       "/ancestor::*[1]//*[contains(@class,'matching-item') or @draggable='true']",
	}
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// BlockSelector is waited for before each primary attempt.
	BlockSelector    string
	BlockTimeout     time.Duration
	FallbackCooldown time.Duration
	MatchingPause    time.Duration
	Placeholder      string
	Paths            StructuralPaths
}

// DefaultDispatcherOptions returns the stock timings and paths.
func DefaultDispatcherOptions() DispatcherOptions {
	return DispatcherOptions{
		BlockSelector:    DefaultExtractorMarkers().Block,
		BlockTimeout:     DefaultBlockTimeout,
		FallbackCooldown: DefaultFallbackCooldown,
		MatchingPause:    DefaultMatchingPause,
		Placeholder:      DefaultPlaceholderAnswer,
		Paths:            DefaultStructuralPaths(),
	}
}

// Attempt records what happened to one question.
type Attempt struct {
	Question Question   `json:"question"`
	Path     AnswerPath `json:"path"`
	// Answer is the resolved answer value, when the path knows one.
	Answer      string `json:"answer,omitempty"`
	PrimaryErr  error  `json:"-"`
	FallbackErr error  `json:"-"`
	// Err is an *AnswerAttemptError when Path is PathAbandoned.
	Err error `json:"-"`
}

// Strategy performs the primary answer action for one modality and returns
// the resolved answer value, if any.
type Strategy func(ctx context.Context, doc Document, q Question) (string, error)

// errNoAnchor is returned when a question has no prompt to anchor selectors on.
var errNoAnchor = errors.New("no prompt text to anchor on")

// Dispatcher answers questions one at a time against the working document.
type Dispatcher struct {
	opts       DispatcherOptions
	actor      Actor
	logger     Logger
	strategies map[Modality]Strategy
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher using actor for the fallback path.
func NewDispatcher(opts DispatcherOptions, actor Actor, logger Logger) *Dispatcher {
	d := &Dispatcher{
		opts:   opts,
		actor:  actor,
		logger: logOrNop(logger),
		sleep:  Sleep,
	}
	d.strategies = map[Modality]Strategy{
		ModalityMultipleChoice: d.selectFirst(opts.Paths.MultipleChoice),
		ModalityWritten:        d.fillWritten,
		ModalityTrueFalse:      d.selectFirst(opts.Paths.TrueFalse),
		ModalityMatching:       d.selectEach,
	}
	return d
}

// SetStrategy replaces the primary strategy of a modality.
func (d *Dispatcher) SetStrategy(m Modality, s Strategy) {
	d.strategies[m] = s
}

// Answer tries the primary strategy, then the fallback instruction. It never
// returns an error: failures are logged and recorded on the Attempt.
func (d *Dispatcher) Answer(ctx context.Context, doc Document, q Question) *Attempt {
	attempt := &Attempt{Question: q}

	answer, err := d.primary(ctx, doc, q)
	if err == nil {
		attempt.Path = PathPrimary
		attempt.Answer = answer
		return attempt
	}
	attempt.PrimaryErr = err
	d.logger.Log(Entry{
		Category: CategoryDispatcher,
		Message:  "primary answer failed, trying fallback",
		Level:    LevelWarn,
		Auxiliary: map[string]any{
			"question": q.Text,
			"modality": string(q.Modality),
			"error":    err.Error(),
		},
	})

	if err := d.fallback(ctx, q); err != nil {
		attempt.FallbackErr = err
		attempt.Path = PathAbandoned
		attempt.Err = &AnswerAttemptError{
			Question:    q.Text,
			PrimaryErr:  attempt.PrimaryErr,
			FallbackErr: err,
		}
		d.logger.Log(Entry{
			Category: CategoryDispatcher,
			Message:  "fallback answer failed, skipping question",
			Level:    LevelError,
			Auxiliary: map[string]any{
				"question": q.Text,
				"error":    err.Error(),
			},
		})
		return attempt
	}

	attempt.Path = PathFallback
	return attempt
}

func (d *Dispatcher) primary(ctx context.Context, doc Document, q Question) (string, error) {
	if d.opts.BlockSelector != "" {
		if err := doc.WaitForSelector(ctx, d.opts.BlockSelector, d.opts.BlockTimeout); err != nil {
			return "", fmt.Errorf("no question block within %s: %w", d.opts.BlockTimeout, err)
		}
	}
	strategy, ok := d.strategies[q.Modality]
	if !ok {
		return "", fmt.Errorf("no strategy for modality %q", q.Modality)
	}
	return strategy(ctx, doc, q)
}

func (d *Dispatcher) fallback(ctx context.Context, q Question) error {
	if d.actor == nil {
		return errors.New("no actor configured")
	}
	if err := d.sleep(ctx, d.opts.FallbackCooldown); err != nil {
		return err
	}
	res, err := d.actor.Act(ctx, FallbackInstruction(q))
	if err != nil {
		return err
	}
	if !res.Issued {
		return errors.New("fallback instruction was not issued")
	}
	return nil
}

// AnchoredSelector returns an XPath selector for path relative to the prompt
// element of q: the innermost element whose whole text, after whitespace
// normalization, equals the prompt. When earlier questions share the prompt,
// q.Repeat picks the matching occurrence.
func AnchoredSelector(q Question, path string) (string, error) {
	prompt := NormalizeSpace(q.Text)
	if prompt == "" {
		return "", errNoAnchor
	}
	lit := XPathLiteral(prompt)
	anchor := fmt.Sprintf("//*[normalize-space(.)=%s and not(*[normalize-space(.)=%s])]", lit, lit)
	if q.Repeat > 0 {
		anchor = fmt.Sprintf("(%s)[%d]", anchor, q.Repeat+1)
	}
	return XPath(anchor + path), nil
}

// XPathLiteral quotes s as an XPath string literal.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func (d *Dispatcher) selectFirst(path string) Strategy {
	return func(ctx context.Context, doc Document, q Question) (string, error) {
		sel, err := AnchoredSelector(q, path)
		if err != nil {
			return "", err
		}
		if err := doc.Locate(sel).First().Click(ctx); err != nil {
			return "", fmt.Errorf("select failed: %w", err)
		}
		if len(q.Options) > 0 {
			return q.Options[0], nil
		}
		return "", nil
	}
}

func (d *Dispatcher) fillWritten(ctx context.Context, doc Document, q Question) (string, error) {
	sel, err := AnchoredSelector(q, d.opts.Paths.Written)
	if err != nil {
		return "", err
	}
	if err := doc.Locate(sel).First().Fill(ctx, d.opts.Placeholder); err != nil {
		return "", fmt.Errorf("fill failed: %w", err)
	}
	return d.opts.Placeholder, nil
}

func (d *Dispatcher) selectEach(ctx context.Context, doc Document, q Question) (string, error) {
	sel, err := AnchoredSelector(q, d.opts.Paths.Matching)
	if err != nil {
		return "", err
	}
	items, err := doc.Locate(sel).All(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve matching items: %w", err)
	}
	if len(items) == 0 {
		return "", errors.New("no matching items found")
	}
	for i, item := range items {
		if err := item.Click(ctx); err != nil {
			return "", fmt.Errorf("select of matching item %d failed: %w", i, err)
		}
		if err := d.sleep(ctx, d.opts.MatchingPause); err != nil {
			return "", err
		}
	}
	return "", nil
}

// FallbackInstruction phrases the natural-language request used when the
// structural path fails.
func FallbackInstruction(q Question) string {
	var b strings.Builder
	switch q.Modality {
	case ModalityMultipleChoice:
		b.WriteString("Answer the multiple choice question")
	case ModalityTrueFalse:
		b.WriteString("Answer the true/false question")
	case ModalityMatching:
		b.WriteString("Complete the matching question")
	default:
		b.WriteString("Answer the written question")
	}
	if q.Text != "" {
		fmt.Fprintf(&b, " %q", q.Text)
	}
	if len(q.Options) > 0 {
		fmt.Fprintf(&b, " (options: %s)", strings.Join(q.Options, "; "))
	}
	b.WriteString(" by selecting or typing the answer directly on the page.")
	return b.String()
}
