package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// DefaultFrameKeywords are the URL fragments that mark an embedded document as
// quiz content.
var DefaultFrameKeywords = []string{"quiz", "assessment", "canvas"}

const (
	// DefaultSettleDelay lets asynchronously attached frames appear.
	DefaultSettleDelay = 5 * time.Second

	// DefaultReadyTimeout bounds the wait for the chosen frame's network to go idle.
	DefaultReadyTimeout = 10 * time.Second
)

// Heuristic decides whether an embedded document holds the quiz.
type Heuristic interface {
	Match(url string) bool
	String() string
}

// KeywordHeuristic matches URLs containing any of its keywords (case-sensitive).
type KeywordHeuristic struct {
	Keywords []string
}

// Match reports whether url contains one of the keywords.
func (h KeywordHeuristic) Match(url string) bool {
	for _, kw := range h.Keywords {
		if kw != "" && strings.Contains(url, kw) {
			return true
		}
	}
	return false
}

func (h KeywordHeuristic) String() string {
	return "keywords(" + strings.Join(h.Keywords, ",") + ")"
}

// GlobHeuristic matches URLs against shell-style glob patterns.
type GlobHeuristic struct {
	patterns []string
	globs    []glob.Glob
}

// NewGlobHeuristic compiles the given patterns.
func NewGlobHeuristic(patterns ...string) (*GlobHeuristic, error) {
	h := &GlobHeuristic{patterns: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid frame pattern %q: %w", p, err)
		}
		h.globs = append(h.globs, g)
	}
	return h, nil
}

// Match reports whether url matches any pattern.
func (h *GlobHeuristic) Match(url string) bool {
	for _, g := range h.globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}

func (h *GlobHeuristic) String() string {
	return "globs(" + strings.Join(h.patterns, ",") + ")"
}

// LocatorOptions configures a Locator.
type LocatorOptions struct {
	// Heuristics are tried against each frame in order; any match selects it.
	Heuristics []Heuristic

	// SettleDelay is waited before frames are enumerated.
	SettleDelay time.Duration

	// ReadyTimeout bounds the chosen frame's ready wait.
	ReadyTimeout time.Duration
}

// DefaultLocatorOptions returns the keyword heuristic with default waits.
func DefaultLocatorOptions() LocatorOptions {
	return LocatorOptions{
		Heuristics:   []Heuristic{KeywordHeuristic{Keywords: DefaultFrameKeywords}},
		SettleDelay:  DefaultSettleDelay,
		ReadyTimeout: DefaultReadyTimeout,
	}
}

// Location is the outcome of locating the working document.
type Location struct {
	Document Document
	// Embedded is false when the root page was chosen.
	Embedded bool
	// Heuristic names the heuristic that selected the frame.
	Heuristic string
}

// Locator picks the working document for a run.
type Locator struct {
	opts   LocatorOptions
	logger Logger
}

// NewLocator creates a locator. A nil logger discards entries.
func NewLocator(opts LocatorOptions, logger Logger) *Locator {
	if len(opts.Heuristics) == 0 {
		opts.Heuristics = DefaultLocatorOptions().Heuristics
	}
	return &Locator{opts: opts, logger: logOrNop(logger)}
}

// Locate waits for the page to settle and returns the first embedded document
// matching a heuristic, or the root page when none does.
//
// When the chosen frame does not become ready in time, the location is still
// returned along with a *NetworkSettleTimeoutError.
func (l *Locator) Locate(ctx context.Context, page Page) (*Location, error) {
	if err := page.WaitForTimeout(ctx, l.opts.SettleDelay); err != nil {
		return nil, fmt.Errorf("settle wait interrupted: %w", err)
	}

	loc := l.choose(page)
	if !loc.Embedded {
		l.logger.Log(Entry{
			Category: CategoryLocator,
			Message:  "no quiz frame found, using root document",
			Auxiliary: map[string]any{
				"url": page.URL(),
			},
		})
		return loc, nil
	}

	l.logger.Log(Entry{
		Category: CategoryLocator,
		Message:  "quiz frame found",
		Auxiliary: map[string]any{
			"url":       loc.Document.URL(),
			"heuristic": loc.Heuristic,
		},
	})

	if err := loc.Document.WaitForReady(ctx, l.opts.ReadyTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ready wait interrupted: %w", ctx.Err())
		}
		settleErr := &NetworkSettleTimeoutError{
			URL:     loc.Document.URL(),
			Timeout: l.opts.ReadyTimeout,
			Err:     err,
		}
		l.logger.Log(Entry{
			Category: CategoryLocator,
			Message:  "quiz frame did not settle",
			Level:    LevelWarn,
			Auxiliary: map[string]any{
				"url":   loc.Document.URL(),
				"error": err.Error(),
			},
		})
		return loc, settleErr
	}

	return loc, nil
}

func (l *Locator) choose(page Page) *Location {
	for _, frame := range page.Frames() {
		url := frame.URL()
		for _, h := range l.opts.Heuristics {
			if h.Match(url) {
				return &Location{Document: frame, Embedded: true, Heuristic: h.String()}
			}
		}
	}
	return &Location{Document: page}
}
