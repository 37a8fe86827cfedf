package tokenizer

import (
	"testing"

	"github.com/entrhq/quizpilot/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestNilTokenizerApproximates(t *testing.T) {
	var tok *Tokenizer

	assert.Equal(t, 0, tok.CountTokens(""))
	assert.Equal(t, 1, tok.CountTokens("abc"))
	assert.Equal(t, 3, tok.CountTokens("0123456789"))

	msgs := []*types.Message{types.NewUserMessage("0123456789")}
	// content 3 + role "user" 1 + overhead
	assert.Equal(t, 3+1+perMessageOverhead, tok.CountMessagesTokens(msgs))
}

func TestNilTokenizerTruncate(t *testing.T) {
	var tok *Tokenizer

	tests := []struct {
		name      string
		text      string
		max       int
		want      string
		truncated bool
	}{
		{"no limit", "abcdefgh", 0, "abcdefgh", false},
		{"fits", "abcdefgh", 2, "abcdefgh", false},
		{"cut", "abcdefghij", 2, "abcdefgh", true},
		{"utf8 boundary", "aaaaaaaé", 2, "aaaaaaa", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := tok.Truncate(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestTiktoken(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Skipf("encoding unavailable in this environment: %v", err)
	}

	assert.Greater(t, tok.CountTokens("Submit the quiz."), 0)

	text := "one two three four five six seven eight nine ten"
	cut, truncated := tok.Truncate(text, 3)
	assert.True(t, truncated)
	assert.Equal(t, 3, tok.CountTokens(cut))
	assert.Contains(t, text, cut)
}
