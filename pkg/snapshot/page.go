package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/entrhq/quizpilot/pkg/quiz"
)

// Page is an offline quiz.Page. Goto records the visit and keeps the loaded
// content in place.
type Page struct {
	*Document
	frames []*Document

	mu      sync.Mutex
	visited []string
	waited  time.Duration
}

// Option configures a Page.
type Option func(*Page) error

// WithFrame appends an embedded document after any srcdoc frames.
func WithFrame(frameURL, content string) Option {
	return func(p *Page) error {
		doc, err := NewDocument(frameURL, content)
		if err != nil {
			return fmt.Errorf("frame %s: %w", frameURL, err)
		}
		doc.journal = p.journal
		p.frames = append(p.frames, doc)
		return nil
	}
}

// New builds a page from root HTML. Every <iframe srcdoc> in the root becomes
// a frame, in document order, addressed by its src resolved against pageURL.
func New(pageURL, content string, opts ...Option) (*Page, error) {
	root, err := NewDocument(pageURL, content)
	if err != nil {
		return nil, err
	}
	p := &Page{Document: root}

	base, _ := url.Parse(pageURL)
	for i, node := range htmlquery.Find(root.root, "//iframe[@srcdoc]") {
		src := htmlquery.SelectAttr(node, "src")
		if src == "" {
			src = fmt.Sprintf("about:srcdoc#%d", i)
		} else if base != nil {
			if ref, err := base.Parse(src); err == nil {
				src = ref.String()
			}
		}
		doc, err := NewDocument(src, htmlquery.SelectAttr(node, "srcdoc"))
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", src, err)
		}
		doc.journal = root.journal
		p.frames = append(p.frames, doc)
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Load reads an HTML file and builds a page for pageURL. An empty pageURL
// uses the file:// URL of path.
func Load(path, pageURL string, opts ...Option) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if pageURL == "" {
		pageURL = (&url.URL{Scheme: "file", Path: path}).String()
	}
	return New(pageURL, string(data), opts...)
}

// Goto records target. The snapshot content does not change.
func (p *Page) Goto(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visited = append(p.visited, target)
	return nil
}

// Frames returns the embedded documents.
func (p *Page) Frames() []quiz.Document {
	out := make([]quiz.Document, len(p.frames))
	for i, f := range p.frames {
		out[i] = f
	}
	return out
}

// Frame returns the i-th embedded document, or nil.
func (p *Page) Frame(i int) *Document {
	if i < 0 || i >= len(p.frames) {
		return nil
	}
	return p.frames[i]
}

// WaitForTimeout accounts for d without sleeping.
func (p *Page) WaitForTimeout(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.waited += d
	p.mu.Unlock()
	return nil
}

// Visited returns the URLs passed to Goto.
func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}

// Waited returns the total time requested through WaitForTimeout.
func (p *Page) Waited() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waited
}
