package quiz

import (
	"fmt"
	"time"
)

// NetworkSettleTimeoutError reports that an embedded document did not reach
// its ready state in time. The Locator returns it together with the document
// so the Runner can decide whether to continue.
type NetworkSettleTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NetworkSettleTimeoutError) Error() string {
	return fmt.Sprintf("network settle timeout after %s for %s: %v", e.Timeout, e.URL, e.Err)
}

func (e *NetworkSettleTimeoutError) Unwrap() error {
	return e.Err
}

// QuizAnalysisError reports that question extraction failed as a whole.
type QuizAnalysisError struct {
	URL string
	Err error
}

func (e *QuizAnalysisError) Error() string {
	return fmt.Sprintf("quiz analysis failed for %s: %v", e.URL, e.Err)
}

func (e *QuizAnalysisError) Unwrap() error {
	return e.Err
}

// AnswerAttemptError reports that both the primary and the fallback answer
// paths failed for one question. It is recorded, never propagated.
type AnswerAttemptError struct {
	Question    string
	PrimaryErr  error
	FallbackErr error
}

func (e *AnswerAttemptError) Error() string {
	return fmt.Sprintf("answer attempt failed for %q: primary: %v; fallback: %v", e.Question, e.PrimaryErr, e.FallbackErr)
}

func (e *AnswerAttemptError) Unwrap() []error {
	return []error{e.PrimaryErr, e.FallbackErr}
}
