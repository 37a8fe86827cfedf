package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/quizpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(actor Actor, logger Logger, opts RunnerOptions) *Runner {
	locOpts := DefaultLocatorOptions()
	locOpts.SettleDelay = time.Millisecond
	locOpts.ReadyTimeout = time.Millisecond
	return NewRunner(
		NewLocator(locOpts, logger),
		NewExtractor(DefaultExtractorMarkers(), nil, logger),
		newTestDispatcher(actor, logger),
		actor,
		logger,
		opts,
	)
}

func collectEvents(r *Runner) *[]*types.RunEvent {
	var events []*types.RunEvent
	r.OnEvent(func(e *types.RunEvent) { events = append(events, e) })
	return &events
}

func TestRunner_FullRun(t *testing.T) {
	page := newFakePage("https://lms.example/course", mixedQuizHTML)
	actor := &scriptedActor{}
	r := newTestRunner(actor, nil, RunnerOptions{})
	events := collectEvents(r)

	res, err := r.Run(context.Background(), page, "https://lms.example/quiz/1")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://lms.example/quiz/1"}, page.visited)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []State{
		StateIdle, StateNavigated, StateSettling, StateAnalyzing,
		StateAnswering, StateSubmitting, StateConfirming, StateDone,
	}, res.States)
	assert.Len(t, res.Questions, 4)
	assert.Len(t, res.Attempts, 4)
	assert.Equal(t, 4, res.Answered()[PathPrimary])
	assert.False(t, res.Embedded)
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, []string{SubmitInstruction, ConfirmInstruction}, actor.Instructions())
	require.NotNil(t, res.Submit)
	assert.True(t, res.Submit.Issued)
	assert.True(t, res.Confirm.Issued)

	last := (*events)[len(*events)-1]
	assert.Equal(t, types.EventTypeRunComplete, last.Type)
	assert.Equal(t, 4, last.Total)
}

func TestRunner_FaultIsolation(t *testing.T) {
	page := newFakePage("https://lms.example/course", mixedQuizHTML)
	// Second question's primary path fails; its fallback (actor call #0) fails too.
	page.locateFn = func(selector string) Element {
		if strings.Contains(selector, "The earth is flat.") {
			return &fakeElement{doc: page.fakeDoc, err: errors.New("not clickable")}
		}
		return &fakeElement{doc: page.fakeDoc, name: selector, count: 1}
	}
	actor := &scriptedActor{errs: map[int]error{0: errors.New("act failed")}}
	r := newTestRunner(actor, nil, RunnerOptions{})
	events := collectEvents(r)

	res, err := r.Run(context.Background(), page, "https://lms.example/quiz/1")
	require.NoError(t, err)

	require.Len(t, res.Attempts, 4, "every question is processed")
	assert.Equal(t, PathPrimary, res.Attempts[0].Path)
	assert.Equal(t, PathAbandoned, res.Attempts[1].Path)
	assert.Equal(t, PathPrimary, res.Attempts[2].Path)
	assert.Equal(t, PathPrimary, res.Attempts[3].Path)
	assert.Contains(t, res.States, StateSubmitting)
	assert.Equal(t, StateDone, res.State)

	var abandoned int
	for _, e := range *events {
		if e.Type == types.EventTypeQuestionAbandoned {
			abandoned++
			assert.Equal(t, 1, e.Index)
		}
	}
	assert.Equal(t, 1, abandoned)
}

func TestRunner_AnalysisFailureIsTerminal(t *testing.T) {
	page := newFakePage("https://lms.example/course", "")
	page.contentErr = errors.New("evaluation failed")
	actor := &scriptedActor{}
	r := newTestRunner(actor, nil, RunnerOptions{})
	events := collectEvents(r)

	res, err := r.Run(context.Background(), page, "https://lms.example/quiz/1")

	var analysisErr *QuizAnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, StateFailed, res.State)
	assert.NotContains(t, res.States, StateAnswering)
	assert.Empty(t, actor.Instructions(), "nothing is submitted after a failed analysis")

	last := (*events)[len(*events)-1]
	assert.Equal(t, types.EventTypeRunFailed, last.Type)
	assert.Equal(t, string(StateAnalyzing), last.State)
}

func TestRunner_NavigationFailure(t *testing.T) {
	page := newFakePage("", "")
	page.gotoErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	res, err := newTestRunner(&scriptedActor{}, nil, RunnerOptions{}).Run(context.Background(), page, "https://nowhere.invalid")

	assert.ErrorContains(t, err, "navigation failed")
	assert.Equal(t, []State{StateIdle, StateFailed}, res.States)
}

func TestRunner_SettleTimeout(t *testing.T) {
	frameHTML := `<div class="question multiple-choice"><p class="prompt">Q</p><span class="option">A</span></div>`
	newPage := func() *fakePage {
		frame := &fakeDoc{url: "https://lms.example/quiz/frame", html: frameHTML, readyErr: errors.New("timeout")}
		return newFakePage("https://lms.example/course", "", frame)
	}

	t.Run("terminal by default", func(t *testing.T) {
		_, err := newTestRunner(&scriptedActor{}, nil, RunnerOptions{}).Run(context.Background(), newPage(), "u")
		var settleErr *NetworkSettleTimeoutError
		assert.ErrorAs(t, err, &settleErr)
	})

	t.Run("proceed when configured", func(t *testing.T) {
		logger := &RecordingLogger{}
		res, err := newTestRunner(&scriptedActor{}, logger, RunnerOptions{ProceedOnSettleTimeout: true}).Run(context.Background(), newPage(), "u")
		require.NoError(t, err)
		assert.True(t, res.Embedded)
		assert.Equal(t, "https://lms.example/quiz/frame", res.DocumentURL)
		assert.Len(t, res.Questions, 1)
		assert.Len(t, logger.Find(CategoryRunner, LevelWarn), 1)
	})
}

func TestRunner_SubmissionFailureStillDone(t *testing.T) {
	page := newFakePage("https://lms.example/course", mixedQuizHTML)
	actor := &scriptedActor{failAll: true}

	res, err := newTestRunner(actor, nil, RunnerOptions{}).Run(context.Background(), page, "u")

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.True(t, res.Submit.Issued, "issued is independent of success")
	assert.Equal(t, "actor failed", res.Submit.Error)
	assert.Equal(t, "actor failed", res.Confirm.Error)
}

func TestRunner_SkipSubmit(t *testing.T) {
	page := newFakePage("https://lms.example/course", mixedQuizHTML)
	actor := &scriptedActor{}

	res, err := newTestRunner(actor, nil, RunnerOptions{SkipSubmit: true}).Run(context.Background(), page, "u")

	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.NotContains(t, res.States, StateSubmitting)
	assert.Nil(t, res.Submit)
	assert.Empty(t, actor.Instructions())
}

func TestRunner_EmptyQuizStillSubmits(t *testing.T) {
	page := newFakePage("https://lms.example/course", "<p>no questions</p>")
	actor := &scriptedActor{}

	res, err := newTestRunner(actor, nil, RunnerOptions{}).Run(context.Background(), page, "u")

	require.NoError(t, err)
	assert.Empty(t, res.Questions)
	assert.Equal(t, []string{SubmitInstruction, ConfirmInstruction}, actor.Instructions())
}
