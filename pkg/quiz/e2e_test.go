package quiz_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/quizpilot/pkg/quiz"
	"github.com/entrhq/quizpilot/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseHTML = `<html><body>
<nav>Course home</nav>
<iframe src="/ads/banner" srcdoc="&lt;p&gt;ad&lt;/p&gt;"></iframe>
<iframe src="/assessment/42" srcdoc='
<form>
  <div class="question multiple-choice">
    <p class="question-text">2+2=?</p>
    <label class="option"><input type="radio" name="q1" value="3"> 3</label>
    <label class="option"><input type="radio" name="q1" value="4"> 4</label>
  </div>
  <div class="question true-false">
    <p class="question-text">Water is wet.</p>
    <label class="option"><input type="radio" name="q2" value="true"> True</label>
    <label class="option"><input type="radio" name="q2" value="false"> False</label>
  </div>
  <div class="question">
    <p class="question-text">Why?</p>
    <textarea name="q3"></textarea>
  </div>
  <div class="question matching">
    <p class="question-text">Unanchored</p>
  </div>
</form>'></iframe>
</body></html>`

type recordingActor struct {
	mu           sync.Mutex
	instructions []string
}

func (a *recordingActor) Act(ctx context.Context, instruction string) (quiz.ActResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instructions = append(a.instructions, instruction)
	if len(a.instructions) == 1 {
		return quiz.ActResult{Instruction: instruction, Issued: true}, errors.New("no matching element")
	}
	return quiz.ActResult{Instruction: instruction, Issued: true, Action: "click"}, nil
}

func TestRun_EmbeddedQuizSnapshot(t *testing.T) {
	page, err := snapshot.New("https://lms.example/course/7", courseHTML)
	require.NoError(t, err)

	logger := &quiz.RecordingLogger{}
	actor := &recordingActor{}

	dispatchOpts := quiz.DefaultDispatcherOptions()
	dispatchOpts.FallbackCooldown = 0
	dispatchOpts.MatchingPause = 0
	dispatchOpts.BlockTimeout = 10 * time.Millisecond

	runner := quiz.NewRunner(
		quiz.NewLocator(quiz.DefaultLocatorOptions(), logger),
		quiz.NewExtractor(quiz.DefaultExtractorMarkers(), nil, logger),
		quiz.NewDispatcher(dispatchOpts, actor, logger),
		actor,
		logger,
		quiz.RunnerOptions{},
	)

	res, err := runner.Run(context.Background(), page, "https://lms.example/course/7")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://lms.example/course/7"}, page.Visited())
	assert.Equal(t, quiz.DefaultSettleDelay, page.Waited())
	assert.True(t, res.Embedded)
	assert.Equal(t, "https://lms.example/assessment/42", res.DocumentURL)

	require.Len(t, res.Questions, 4)
	assert.Equal(t, quiz.ModalityMultipleChoice, res.Questions[0].Modality)
	assert.Equal(t, quiz.ModalityTrueFalse, res.Questions[1].Modality)
	assert.Equal(t, quiz.ModalityWritten, res.Questions[2].Modality)
	assert.Equal(t, quiz.ModalityMatching, res.Questions[3].Modality)

	require.Len(t, res.Attempts, 4)
	assert.Equal(t, quiz.PathPrimary, res.Attempts[0].Path)
	assert.Equal(t, "3", res.Attempts[0].Answer)
	assert.Equal(t, quiz.PathPrimary, res.Attempts[1].Path)
	assert.Equal(t, quiz.PathPrimary, res.Attempts[2].Path)
	assert.Equal(t, quiz.DefaultPlaceholderAnswer, res.Attempts[2].Answer)
	assert.Equal(t, quiz.PathAbandoned, res.Attempts[3].Path, "no matching items and the fallback failed")

	var targets []string
	for _, a := range page.Actions() {
		assert.Equal(t, "https://lms.example/assessment/42", a.Document)
		targets = append(targets, a.String())
	}
	assert.Equal(t, []string{
		"click input[name=q1][type=radio][value=3]",
		"click input[name=q2][type=radio][value=true]",
		`fill textarea[name=q3] = "This is a sample answer."`,
	}, targets)

	require.Len(t, actor.instructions, 3)
	assert.Contains(t, actor.instructions[0], `"Unanchored"`)
	assert.Equal(t, quiz.SubmitInstruction, actor.instructions[1])
	assert.Equal(t, quiz.ConfirmInstruction, actor.instructions[2])

	assert.Equal(t, quiz.StateDone, res.State)
	assert.NotEmpty(t, logger.Find(quiz.CategoryDispatcher, quiz.LevelError))
}

const promptMarkupHTML = `<html><body><form>
<div class="question multiple-choice">
  <p class="question-text">What is
     2+2?</p>
  <label class="option"><input type="radio" name="q1" value="4"> 4</label>
</div>
<div class="question multiple-choice">
  <p class="question-text">Which is <b>larger</b>?</p>
  <label class="option"><input type="radio" name="q2" value="a"> A</label>
</div>
<div class="question true-false">
  <p class="question-text">Is 7 prime?</p>
  <label class="option"><input type="radio" name="q3" value="y"> Yes</label>
</div>
<div class="question true-false">
  <p class="question-text">7 prime?</p>
  <label class="option"><input type="radio" name="q4" value="y"> Yes</label>
</div>
<div class="question">
  <p class="question-text">Why?</p>
  <textarea name="q5"></textarea>
</div>
<div class="question">
  <p class="question-text">Why?</p>
  <textarea name="q6"></textarea>
</div>
</form></body></html>`

func TestDispatcher_AnchorsPromptsInSnapshot(t *testing.T) {
	doc, err := snapshot.NewDocument("https://lms.example/quiz/3", promptMarkupHTML)
	require.NoError(t, err)
	ctx := context.Background()

	questions, err := quiz.NewExtractor(quiz.DefaultExtractorMarkers(), nil, nil).Extract(ctx, doc)
	require.NoError(t, err)
	require.Len(t, questions, 6)
	assert.Equal(t, "What is 2+2?", questions[0].Text)
	assert.Equal(t, "Which is larger?", questions[1].Text)
	assert.Equal(t, 0, questions[4].Repeat)
	assert.Equal(t, 1, questions[5].Repeat)

	opts := quiz.DefaultDispatcherOptions()
	opts.FallbackCooldown = 0
	dispatcher := quiz.NewDispatcher(opts, nil, nil)

	for _, q := range questions {
		attempt := dispatcher.Answer(ctx, doc, q)
		assert.Equal(t, quiz.PathPrimary, attempt.Path, "%q: %v", q.Text, attempt.PrimaryErr)
	}

	var targets []string
	for _, a := range doc.Actions() {
		targets = append(targets, a.String())
	}
	assert.Equal(t, []string{
		"click input[name=q1][type=radio][value=4]",
		"click input[name=q2][type=radio][value=a]",
		"click input[name=q3][type=radio][value=y]",
		"click input[name=q4][type=radio][value=y]",
		`fill textarea[name=q5] = "This is a sample answer."`,
		`fill textarea[name=q6] = "This is a sample answer."`,
	}, targets)
}
