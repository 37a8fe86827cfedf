// Package tokenizer counts and trims text in model tokens.
//
// A nil *Tokenizer is usable and approximates one token per four bytes, for
// environments where the BPE ranks cannot be loaded.
package tokenizer

import (
	"fmt"

	"github.com/entrhq/quizpilot/pkg/types"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE used by current OpenAI chat models.
const DefaultEncoding = "cl100k_base"

// perMessageOverhead approximates role and framing tokens per chat message.
const perMessageOverhead = 4

// Tokenizer wraps a tiktoken encoding.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads DefaultEncoding. Loading may download the ranks on first use.
func New() (*Tokenizer, error) {
	return NewWithEncoding(DefaultEncoding)
}

// NewWithEncoding loads the named encoding.
func NewWithEncoding(encoding string) (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.enc == nil {
		return (len(text) + 3) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessagesTokens returns the tokens of a whole conversation.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += t.CountTokens(msg.Content) + t.CountTokens(string(msg.Role)) + perMessageOverhead
	}
	return total
}

// Truncate cuts text to at most maxTokens tokens and reports whether it cut.
// maxTokens <= 0 means no limit.
func (t *Tokenizer) Truncate(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return text, false
	}
	if t == nil || t.enc == nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text, false
		}
		return validPrefix(text, limit), true
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	return t.enc.Decode(tokens[:maxTokens]), true
}

// validPrefix returns at most n bytes of s without splitting a UTF-8 sequence.
func validPrefix(s string, n int) string {
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
