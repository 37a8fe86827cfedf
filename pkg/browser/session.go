package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/quizpilot/pkg/quiz"
	"github.com/playwright-community/playwright-go"
)

var _ quiz.Page = (*Session)(nil)

func newSession(name string, browser playwright.Browser, bctx playwright.BrowserContext, page playwright.Page, headless bool) *Session {
	return &Session{
		Name:      name,
		Browser:   browser,
		Context:   bctx,
		Page:      page,
		Headless:  headless,
		CreatedAt: time.Now(),
		main:      &frameDocument{frame: page.MainFrame()},
	}
}

// Goto navigates the page and waits for the load event.
func (s *Session) Goto(ctx context.Context, url string) error {
	timeout, err := boundedTimeout(ctx, DefaultNavTimeout)
	if err != nil {
		return err
	}
	_, err = s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeout),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Frames returns the frames embedded directly in the page, in the order the
// browser enumerates them. Nested frames are not included.
func (s *Session) Frames() []quiz.Document {
	children := childFrames(s.Page.MainFrame(), s.Page.Frames())
	out := make([]quiz.Document, 0, len(children))
	for _, f := range children {
		out = append(out, &frameDocument{frame: f})
	}
	return out
}

func childFrames(main playwright.Frame, frames []playwright.Frame) []playwright.Frame {
	out := make([]playwright.Frame, 0, len(frames))
	for _, f := range frames {
		if f != main && f.ParentFrame() == main {
			out = append(out, f)
		}
	}
	return out
}

// WaitForTimeout pauses for d or until ctx is done.
func (s *Session) WaitForTimeout(ctx context.Context, d time.Duration) error {
	return quiz.Sleep(ctx, d)
}

// URL returns the main frame's current URL.
func (s *Session) URL() string { return s.main.URL() }

// Content returns the main frame's serialized DOM.
func (s *Session) Content(ctx context.Context) (string, error) { return s.main.Content(ctx) }

// WaitForReady waits for the main frame to go network idle.
func (s *Session) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.main.WaitForReady(ctx, timeout)
}

// WaitForSelector waits for selector to be attached in the main frame.
func (s *Session) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return s.main.WaitForSelector(ctx, selector, timeout)
}

// Locate returns a handle on selector in the main frame.
func (s *Session) Locate(selector string) quiz.Element { return s.main.Locate(selector) }

func (s *Session) close() error {
	var errs []error
	if err := s.Page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session %q: %w", s.Name, errors.Join(errs...))
	}
	return nil
}

// boundedTimeout returns d in milliseconds, shortened to ctx's deadline.
func boundedTimeout(ctx context.Context, d time.Duration) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d <= 0 {
		return 0, context.DeadlineExceeded
	}
	return millis(d), nil
}
