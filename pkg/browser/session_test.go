package browser

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedTimeout(t *testing.T) {
	t.Run("no deadline", func(t *testing.T) {
		ms, err := boundedTimeout(context.Background(), 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 5000.0, ms)
	})

	t.Run("deadline shortens", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		ms, err := boundedTimeout(ctx, time.Minute)
		require.NoError(t, err)
		assert.LessOrEqual(t, ms, 1000.0)
		assert.Greater(t, ms, 0.0)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := boundedTimeout(ctx, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSessionManager_RequiresInitialize(t *testing.T) {
	m := NewSessionManager(nil)

	_, err := m.StartSession("quiz", SessionOptions{Headless: true})
	assert.EqualError(t, err, "session manager not initialized")
	assert.NoError(t, m.Shutdown())
}

func TestSessionManager_DuplicateSession(t *testing.T) {
	m := NewSessionManager(nil)
	m.initialized = true
	m.sessions["quiz"] = &Session{Name: "quiz"}

	_, err := m.StartSession("quiz", SessionOptions{})
	assert.EqualError(t, err, `session "quiz" already exists`)
}

type stubFrame struct {
	playwright.Frame
	name   string
	parent playwright.Frame
}

func (f *stubFrame) ParentFrame() playwright.Frame { return f.parent }

type stubPage struct {
	playwright.Page
	main   playwright.Frame
	frames []playwright.Frame
}

func (p *stubPage) MainFrame() playwright.Frame { return p.main }
func (p *stubPage) Frames() []playwright.Frame { return p.frames }

func TestSession_FramesKeepsDirectChildren(t *testing.T) {
	main := &stubFrame{name: "main"}
	course := &stubFrame{name: "course", parent: main}
	nested := &stubFrame{name: "nested", parent: course}
	quizFrame := &stubFrame{name: "quiz", parent: main}

	s := &Session{Page: &stubPage{
		main:   main,
		frames: []playwright.Frame{main, course, nested, quizFrame},
	}}

	docs := s.Frames()
	require.Len(t, docs, 2)
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.(*frameDocument).frame.(*stubFrame).name)
	}
	assert.Equal(t, []string{"course", "quiz"}, names)
}
