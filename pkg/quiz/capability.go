package quiz

import (
	"context"
	"strings"
	"time"
)

// XPathPrefix marks a selector as XPath. Selectors without it are CSS.
const XPathPrefix = "xpath="

// Document is a navigable document: the root page or an embedded frame.
type Document interface {
	// URL returns the document's source locator.
	URL() string

	// Content returns an HTML snapshot of the document's content tree.
	Content(ctx context.Context) (string, error)

	// WaitForReady blocks until the document has no pending network activity.
	WaitForReady(ctx context.Context, timeout time.Duration) error

	// WaitForSelector blocks until at least one node matches selector.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Locate returns a lazy handle on the nodes matching selector.
	Locate(selector string) Element
}

// Page is the root document of a browsing context.
type Page interface {
	Document

	// Goto navigates the root document to url.
	Goto(ctx context.Context, url string) error

	// Frames returns the embedded sub-documents in enumeration order. The root
	// document itself is not included.
	Frames() []Document

	// WaitForTimeout pauses for d.
	WaitForTimeout(ctx context.Context, d time.Duration) error
}

// Element is a lazy handle on zero or more nodes of a Document.
type Element interface {
	// First narrows the handle to the first match.
	First() Element

	// All resolves every current match, in document order.
	All(ctx context.Context) ([]Element, error)

	// Click clicks the single matched node.
	Click(ctx context.Context) error

	// Fill sets the text content of the single matched input.
	Fill(ctx context.Context, text string) error
}

// ActResult reports what happened to a natural-language instruction.
//
// Issued means the instruction reached the action layer. It does not mean the
// page ended up in the intended state: that is never verified.
type ActResult struct {
	Instruction string
	Issued      bool
	// Action is a short description of what was performed, if anything.
	Action string
}

// Actor performs a natural-language instruction against the whole page.
type Actor interface {
	Act(ctx context.Context, instruction string) (ActResult, error)
}

// ActorFunc adapts a function to the Actor interface.
type ActorFunc func(ctx context.Context, instruction string) (ActResult, error)

// Act calls f.
func (f ActorFunc) Act(ctx context.Context, instruction string) (ActResult, error) {
	return f(ctx, instruction)
}

// XPath builds an XPath selector from an expression.
func XPath(expr string) string {
	return XPathPrefix + expr
}

// IsXPath reports whether selector is an XPath selector and returns the bare expression.
func IsXPath(selector string) (string, bool) {
	if strings.HasPrefix(selector, XPathPrefix) {
		return strings.TrimPrefix(selector, XPathPrefix), true
	}
	return selector, false
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
