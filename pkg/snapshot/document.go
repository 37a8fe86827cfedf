package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/entrhq/quizpilot/pkg/quiz"
	"golang.org/x/net/html"
)

// Action is one journaled interaction.
type Action struct {
	Document string `json:"document"`
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	Value    string `json:"value,omitempty"`
}

func (a Action) String() string {
	if a.Kind == "fill" {
		return fmt.Sprintf("fill %s = %q", a.Target, a.Value)
	}
	return a.Kind + " " + a.Target
}

// journal is shared by a page and its frames.
type journal struct {
	mu      sync.Mutex
	actions []Action
}

func (j *journal) add(a Action) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, a)
}

func (j *journal) list() []Action {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Action, len(j.actions))
	copy(out, j.actions)
	return out
}

// Document is a parsed static document.
type Document struct {
	url     string
	root    *html.Node
	journal *journal
	mu      sync.RWMutex
}

// NewDocument parses content as the document at url.
func NewDocument(url, content string) (*Document, error) {
	root, err := htmlquery.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{url: url, root: root, journal: &journal{}}, nil
}

// URL returns the document's URL.
func (d *Document) URL() string { return d.url }

// Content renders the current tree, including values written by Fill and
// checked state set by Click.
func (d *Document) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

// WaitForReady returns immediately: a snapshot has no network activity.
func (d *Document) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return ctx.Err()
}

// WaitForSelector succeeds when selector currently matches. Static content
// never changes on its own, so there is nothing to wait for.
func (d *Document) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	nodes, err := d.query(selector)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("timeout %s exceeded waiting for %q", timeout, selector)
	}
	return nil
}

// Locate returns a lazy handle on selector.
func (d *Document) Locate(selector string) quiz.Element {
	return &element{doc: d, selector: selector, index: -1}
}

// Actions returns the journal shared with the owning page.
func (d *Document) Actions() []Action {
	return d.journal.list()
}

func (d *Document) query(selector string) ([]*html.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if expr, ok := quiz.IsXPath(selector); ok {
		nodes, err := htmlquery.QueryAll(d.root, expr)
		if err != nil {
			return nil, fmt.Errorf("invalid XPath expression %q: %w", expr, err)
		}
		return nodes, nil
	}
	sel, err := compileCSS(selector)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(d.root).FindMatcher(sel).Nodes, nil
}

type element struct {
	doc      *Document
	selector string
	// index narrows the handle to one match; -1 means every match.
	index int
}

func (e *element) First() quiz.Element {
	return &element{doc: e.doc, selector: e.selector, index: 0}
}

func (e *element) All(ctx context.Context) ([]quiz.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nodes, err := e.doc.query(e.selector)
	if err != nil {
		return nil, err
	}
	if e.index >= 0 {
		if e.index >= len(nodes) {
			return []quiz.Element{}, nil
		}
		return []quiz.Element{e}, nil
	}
	out := make([]quiz.Element, len(nodes))
	for i := range nodes {
		out[i] = &element{doc: e.doc, selector: e.selector, index: i}
	}
	return out, nil
}

// resolve returns the single node an action applies to.
func (e *element) resolve(ctx context.Context) (*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nodes, err := e.doc.query(e.selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %q", e.selector)
	}
	if e.index < 0 {
		if len(nodes) > 1 {
			return nil, fmt.Errorf("strict mode violation: %q resolved to %d elements", e.selector, len(nodes))
		}
		return nodes[0], nil
	}
	if e.index >= len(nodes) {
		return nil, fmt.Errorf("element %d of %q is gone", e.index, e.selector)
	}
	return nodes[e.index], nil
}

func (e *element) Click(ctx context.Context) error {
	node, err := e.resolve(ctx)
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	e.doc.mu.Lock()
	check(node)
	e.doc.mu.Unlock()
	e.doc.journal.add(Action{Document: e.doc.url, Kind: "click", Target: describe(node)})
	return nil
}

func (e *element) Fill(ctx context.Context, text string) error {
	node, err := e.resolve(ctx)
	if err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	if !fillable(node) {
		return fmt.Errorf("fill failed: <%s> is not an input, textarea or contenteditable element", node.Data)
	}
	e.doc.mu.Lock()
	setValue(node, text)
	e.doc.mu.Unlock()
	e.doc.journal.add(Action{Document: e.doc.url, Kind: "fill", Target: describe(node), Value: text})
	return nil
}
