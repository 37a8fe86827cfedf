package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(actor Actor, logger Logger) *Dispatcher {
	d := NewDispatcher(DefaultDispatcherOptions(), actor, logger)
	d.sleep = noSleep
	return d
}

func TestDispatcher_MultipleChoiceClicksAnchoredOption(t *testing.T) {
	doc := &fakeDoc{url: "https://lms.example/quiz"}
	actor := &scriptedActor{}
	q := Question{Modality: ModalityMultipleChoice, Text: "2+2=?", Options: []string{"3", "4", "5"}}

	attempt := newTestDispatcher(actor, nil).Answer(context.Background(), doc, q)

	assert.Equal(t, PathPrimary, attempt.Path)
	assert.Equal(t, "3", attempt.Answer)
	require.Len(t, doc.Actions(), 1)
	assert.Equal(t,
		"click xpath=//*[normalize-space(.)='2+2=?' and not(*[normalize-space(.)='2+2=?'])]/ancestor::*[1]//input[@type='radio' or @type='checkbox']",
		doc.Actions()[0])
	assert.Empty(t, actor.Instructions(), "fallback must not run after a primary success")
}

func TestDispatcher_WrittenFillsPlaceholder(t *testing.T) {
	doc := &fakeDoc{}
	q := Question{Modality: ModalityWritten, Text: "Describe your weekend."}

	attempt := newTestDispatcher(&scriptedActor{}, nil).Answer(context.Background(), doc, q)

	assert.Equal(t, PathPrimary, attempt.Path)
	assert.Equal(t, DefaultPlaceholderAnswer, attempt.Answer)
	require.Len(t, doc.Actions(), 1)
	assert.True(t, strings.HasPrefix(doc.Actions()[0], "fill xpath="))
	assert.True(t, strings.HasSuffix(doc.Actions()[0], "= "+DefaultPlaceholderAnswer))
}

func TestDispatcher_TrueFalseSelectsBooleanInput(t *testing.T) {
	doc := &fakeDoc{}
	q := Question{Modality: ModalityTrueFalse, Text: "The earth is flat."}

	attempt := newTestDispatcher(&scriptedActor{}, nil).Answer(context.Background(), doc, q)

	assert.Equal(t, PathPrimary, attempt.Path)
	require.Len(t, doc.Actions(), 1)
	assert.Contains(t, doc.Actions()[0], "input[@type='radio']")
}

func TestDispatcher_MatchingSelectsEachWithPause(t *testing.T) {
	doc := &fakeDoc{}
	doc.locateFn = func(selector string) Element {
		return &fakeElement{doc: doc, name: "item", count: 3}
	}
	d := newTestDispatcher(&scriptedActor{}, nil)
	var pauses []time.Duration
	d.sleep = func(ctx context.Context, p time.Duration) error {
		pauses = append(pauses, p)
		return nil
	}

	attempt := d.Answer(context.Background(), doc, Question{Modality: ModalityMatching, Text: "Match the capitals"})

	assert.Equal(t, PathPrimary, attempt.Path)
	assert.Equal(t, []string{"click item", "click item", "click item"}, doc.Actions())
	assert.Equal(t, []time.Duration{DefaultMatchingPause, DefaultMatchingPause, DefaultMatchingPause}, pauses)
}

func TestDispatcher_MatchingWithoutItemsFallsBack(t *testing.T) {
	doc := &fakeDoc{}
	doc.locateFn = func(selector string) Element {
		return &fakeElement{doc: doc, name: "item", count: 0}
	}
	actor := &scriptedActor{}

	attempt := newTestDispatcher(actor, nil).Answer(context.Background(), doc, Question{Modality: ModalityMatching, Text: "Match"})

	assert.Equal(t, PathFallback, attempt.Path)
	assert.Len(t, actor.Instructions(), 1)
}

func TestDispatcher_PrimaryFailureUsesFallback(t *testing.T) {
	doc := &fakeDoc{}
	doc.locateFn = func(selector string) Element {
		return &fakeElement{doc: doc, err: errors.New("element not attached")}
	}
	actor := &scriptedActor{}
	logger := &RecordingLogger{}
	q := Question{Modality: ModalityMultipleChoice, Text: "2+2=?", Options: []string{"3", "4"}}

	attempt := newTestDispatcher(actor, logger).Answer(context.Background(), doc, q)

	assert.Equal(t, PathFallback, attempt.Path)
	assert.ErrorContains(t, attempt.PrimaryErr, "element not attached")
	assert.NoError(t, attempt.FallbackErr)
	require.Len(t, actor.Instructions(), 1)
	assert.Contains(t, actor.Instructions()[0], `"2+2=?"`)
	assert.Contains(t, actor.Instructions()[0], "3; 4")

	warns := logger.Find(CategoryDispatcher, LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "2+2=?", warns[0].Auxiliary["question"])
	assert.Equal(t, "select failed: element not attached", warns[0].Auxiliary["error"])
}

func TestDispatcher_BlockWaitTimeoutRoutesToFallback(t *testing.T) {
	doc := &fakeDoc{waitErr: errors.New("timeout 5000ms exceeded")}
	actor := &scriptedActor{}

	attempt := newTestDispatcher(actor, nil).Answer(context.Background(), doc, Question{Modality: ModalityWritten, Text: "Why?"})

	assert.Equal(t, PathFallback, attempt.Path)
	assert.ErrorContains(t, attempt.PrimaryErr, "no question block")
	assert.Empty(t, doc.Actions())
}

func TestDispatcher_BothPathsFailAbandonsQuestion(t *testing.T) {
	doc := &fakeDoc{waitErr: errors.New("detached")}
	actor := &scriptedActor{failAll: true}
	logger := &RecordingLogger{}

	attempt := newTestDispatcher(actor, logger).Answer(context.Background(), doc, Question{Modality: ModalityTrueFalse, Text: "Sky is blue"})

	assert.Equal(t, PathAbandoned, attempt.Path)
	var answerErr *AnswerAttemptError
	require.ErrorAs(t, attempt.Err, &answerErr)
	assert.Equal(t, "Sky is blue", answerErr.Question)
	assert.Len(t, actor.Instructions(), 1, "exactly one fallback, no second retry")
	assert.Len(t, logger.Find(CategoryDispatcher, LevelError), 1)
}

func TestDispatcher_EmptyPromptSkipsStraightToFallback(t *testing.T) {
	doc := &fakeDoc{}
	actor := &scriptedActor{}

	attempt := newTestDispatcher(actor, nil).Answer(context.Background(), doc, Question{Modality: ModalityMultipleChoice})

	assert.Equal(t, PathFallback, attempt.Path)
	assert.ErrorIs(t, attempt.PrimaryErr, errNoAnchor)
	assert.Empty(t, doc.located)
}

func TestDispatcher_NilActorAbandons(t *testing.T) {
	doc := &fakeDoc{waitErr: errors.New("gone")}
	attempt := newTestDispatcher(nil, nil).Answer(context.Background(), doc, Question{Modality: ModalityWritten, Text: "x"})
	assert.Equal(t, PathAbandoned, attempt.Path)
}

func TestDispatcher_CustomStrategy(t *testing.T) {
	d := newTestDispatcher(&scriptedActor{}, nil)
	d.SetStrategy(ModalityWritten, func(ctx context.Context, doc Document, q Question) (string, error) {
		return "custom", nil
	})
	attempt := d.Answer(context.Background(), &fakeDoc{}, Question{Modality: ModalityWritten, Text: "x"})
	assert.Equal(t, "custom", attempt.Answer)
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"it's", `"it's"`},
		{`say "hi"`, `'say "hi"'`},
		{`it's "x"`, `concat('it', "'", 's "x"')`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, XPathLiteral(tt.in), tt.in)
	}
}

func TestAnchoredSelector(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want string
	}{
		{
			name: "whitespace collapsed",
			q:    Question{Text: "  Capital of\n\t France?  "},
			want: "xpath=//*[normalize-space(.)='Capital of France?' and not(*[normalize-space(.)='Capital of France?'])]//input",
		},
		{
			name: "repeated prompt picks occurrence",
			q:    Question{Text: "Why?", Repeat: 2},
			want: "xpath=(//*[normalize-space(.)='Why?' and not(*[normalize-space(.)='Why?'])])[3]//input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := AnchoredSelector(tt.q, "//input")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel)
		})
	}

	_, err := AnchoredSelector(Question{Text: " \n "}, "//input")
	assert.ErrorIs(t, err, errNoAnchor)
}

func TestNormalizeSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"  What is\n     2+2?  ", "What is 2+2?"},
		{"a\t\r\nb", "a b"},
		{"keep\u00a0nbsp", "keep\u00a0nbsp"},
		{" \n ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSpace(tt.in), tt.in)
	}
}

func TestFallbackInstruction(t *testing.T) {
	assert.Equal(t,
		`Answer the true/false question "Sky is blue" (options: True; False) by selecting or typing the answer directly on the page.`,
		FallbackInstruction(Question{Modality: ModalityTrueFalse, Text: "Sky is blue", Options: []string{"True", "False"}}))
	assert.Equal(t,
		"Answer the written question by selecting or typing the answer directly on the page.",
		FallbackInstruction(Question{Modality: ModalityWritten}))
}
