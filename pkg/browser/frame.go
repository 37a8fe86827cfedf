package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/quizpilot/pkg/quiz"
	"github.com/playwright-community/playwright-go"
)

// frameDocument is a quiz.Document over a Playwright frame.
type frameDocument struct {
	frame playwright.Frame
}

func (d *frameDocument) URL() string { return d.frame.URL() }

func (d *frameDocument) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := d.frame.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read frame content: %w", err)
	}
	return content, nil
}

func (d *frameDocument) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ms, err := boundedTimeout(ctx, timeout)
	if err != nil {
		return err
	}
	return d.frame.WaitForLoadState(playwright.FrameWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(ms),
	})
}

func (d *frameDocument) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	ms, err := boundedTimeout(ctx, timeout)
	if err != nil {
		return err
	}
	_, err = d.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(ms),
	})
	if err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

func (d *frameDocument) Locate(selector string) quiz.Element {
	return &element{locator: d.frame.Locator(selector)}
}

// element is a quiz.Element over a Playwright locator.
type element struct {
	locator playwright.Locator
}

func (e *element) First() quiz.Element {
	return &element{locator: e.locator.First()}
}

func (e *element) All(ctx context.Context) ([]quiz.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locators, err := e.locator.All()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve elements: %w", err)
	}
	out := make([]quiz.Element, len(locators))
	for i, l := range locators {
		out[i] = &element{locator: l}
	}
	return out, nil
}

func (e *element) Click(ctx context.Context) error {
	ms, err := boundedTimeout(ctx, DefaultTimeout)
	if err != nil {
		return err
	}
	if err := e.locator.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(ms)}); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *element) Fill(ctx context.Context, text string) error {
	ms, err := boundedTimeout(ctx, DefaultTimeout)
	if err != nil {
		return err
	}
	if err := e.locator.Fill(text, playwright.LocatorFillOptions{Timeout: playwright.Float(ms)}); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}
