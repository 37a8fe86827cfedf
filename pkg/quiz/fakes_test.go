package quiz

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeDoc is a scripted Document. Locate resolves through locateFn, or to a
// recording element when locateFn is nil.
type fakeDoc struct {
	url        string
	html       string
	contentErr error
	readyErr   error
	waitErr    error
	locateFn   func(selector string) Element

	mu       sync.Mutex
	actions  []string
	located  []string
	readyFor []time.Duration
}

func (d *fakeDoc) URL() string { return d.url }

func (d *fakeDoc) Content(ctx context.Context) (string, error) {
	if d.contentErr != nil {
		return "", d.contentErr
	}
	return d.html, nil
}

func (d *fakeDoc) WaitForReady(ctx context.Context, timeout time.Duration) error {
	d.mu.Lock()
	d.readyFor = append(d.readyFor, timeout)
	d.mu.Unlock()
	return d.readyErr
}

func (d *fakeDoc) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return d.waitErr
}

func (d *fakeDoc) Locate(selector string) Element {
	d.mu.Lock()
	d.located = append(d.located, selector)
	d.mu.Unlock()
	if d.locateFn != nil {
		return d.locateFn(selector)
	}
	return &fakeElement{doc: d, name: selector, count: 1}
}

func (d *fakeDoc) record(action string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
}

func (d *fakeDoc) Actions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.actions))
	copy(out, d.actions)
	return out
}

type fakeElement struct {
	doc   *fakeDoc
	name  string
	count int
	err   error
}

func (e *fakeElement) First() Element { return e }

func (e *fakeElement) All(ctx context.Context) ([]Element, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([]Element, e.count)
	for i := range out {
		out[i] = &fakeElement{doc: e.doc, name: e.name, count: 1}
	}
	return out, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	if e.err != nil {
		return e.err
	}
	e.doc.record("click " + e.name)
	return nil
}

func (e *fakeElement) Fill(ctx context.Context, text string) error {
	if e.err != nil {
		return e.err
	}
	e.doc.record("fill " + e.name + " = " + text)
	return nil
}

type fakePage struct {
	*fakeDoc
	frames  []Document
	gotoErr error
	waits   []time.Duration
	visited []string
}

func newFakePage(url, html string, frames ...Document) *fakePage {
	return &fakePage{fakeDoc: &fakeDoc{url: url, html: html}, frames: frames}
}

func (p *fakePage) Goto(ctx context.Context, url string) error {
	if p.gotoErr != nil {
		return p.gotoErr
	}
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) Frames() []Document { return p.frames }

func (p *fakePage) WaitForTimeout(ctx context.Context, d time.Duration) error {
	p.waits = append(p.waits, d)
	return ctx.Err()
}

// scriptedActor answers instructions with scripted errors, in order.
type scriptedActor struct {
	mu           sync.Mutex
	instructions []string
	errs         map[int]error
	failAll      bool
}

func (a *scriptedActor) Act(ctx context.Context, instruction string) (ActResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.instructions)
	a.instructions = append(a.instructions, instruction)
	if a.failAll {
		return ActResult{Instruction: instruction, Issued: true}, errors.New("actor failed")
	}
	if err, ok := a.errs[n]; ok {
		return ActResult{Instruction: instruction, Issued: true}, err
	}
	return ActResult{Instruction: instruction, Issued: true, Action: "click"}, nil
}

func (a *scriptedActor) Instructions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.instructions))
	copy(out, a.instructions)
	return out
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }
