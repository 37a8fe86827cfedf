package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/quizpilot/pkg/quiz"
)

// SectionIDQuiz is the identifier for the quiz tuning section
const SectionIDQuiz = "quiz"

// QuizSection tunes frame location, question markup and answering.
type QuizSection struct {
	mu sync.RWMutex

	SettleDelay      time.Duration
	ReadyTimeout     time.Duration
	BlockTimeout     time.Duration
	FallbackCooldown time.Duration
	MatchingPause    time.Duration

	FrameKeywords []string
	FramePatterns []string

	Markers         quiz.ExtractorMarkers
	ModalityMarkers quiz.ModalityMarkers
	ModalityOrder   []quiz.Modality

	PlaceholderAnswer      string
	ProceedOnSettleTimeout bool
}

// NewQuizSection creates a quiz section with the stock defaults.
func NewQuizSection() *QuizSection {
	s := &QuizSection{}
	s.reset()
	return s
}

func (s *QuizSection) ID() string    { return SectionIDQuiz }
func (s *QuizSection) Title() string { return "Quiz Settings" }

func (s *QuizSection) Description() string {
	return "Waits, frame heuristics, question markup and the placeholder written answer. Durations use Go syntax such as \"5s\" or \"500ms\"."
}

func (s *QuizSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"settle_delay":              s.SettleDelay.String(),
		"ready_timeout":             s.ReadyTimeout.String(),
		"block_timeout":             s.BlockTimeout.String(),
		"fallback_cooldown":         s.FallbackCooldown.String(),
		"matching_pause":            s.MatchingPause.String(),
		"frame_keywords":            append([]string(nil), s.FrameKeywords...),
		"frame_patterns":            append([]string(nil), s.FramePatterns...),
		"block_selector":            s.Markers.Block,
		"prompt_selectors":          append([]string(nil), s.Markers.Prompts...),
		"option_selector":           s.Markers.Options,
		"multiple_choice_markers":   append([]string(nil), s.ModalityMarkers.MultipleChoice...),
		"true_false_markers":        append([]string(nil), s.ModalityMarkers.TrueFalse...),
		"matching_markers":          append([]string(nil), s.ModalityMarkers.Matching...),
		"modality_order":            modalityNames(s.ModalityOrder),
		"placeholder_answer":        s.PlaceholderAnswer,
		"proceed_on_settle_timeout": s.ProceedOnSettleTimeout,
	}
}

// SetData applies data. Keys that are present but malformed are reported
// together; well-formed keys are still applied.
func (s *QuizSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	for key, field := range map[string]*time.Duration{
		"settle_delay":      &s.SettleDelay,
		"ready_timeout":     &s.ReadyTimeout,
		"block_timeout":     &s.BlockTimeout,
		"fallback_cooldown": &s.FallbackCooldown,
		"matching_pause":    &s.MatchingPause,
	} {
		v, ok := data[key]
		if !ok {
			continue
		}
		d, err := duration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		*field = d
	}

	for key, field := range map[string]*[]string{
		"frame_keywords":          &s.FrameKeywords,
		"frame_patterns":          &s.FramePatterns,
		"prompt_selectors":        &s.Markers.Prompts,
		"multiple_choice_markers": &s.ModalityMarkers.MultipleChoice,
		"true_false_markers":      &s.ModalityMarkers.TrueFalse,
		"matching_markers":        &s.ModalityMarkers.Matching,
	} {
		v, ok := data[key]
		if !ok {
			continue
		}
		list, ok := stringList(v)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: expected a list of strings", key))
			continue
		}
		*field = list
	}

	for key, field := range map[string]*string{
		"block_selector":     &s.Markers.Block,
		"option_selector":    &s.Markers.Options,
		"placeholder_answer": &s.PlaceholderAnswer,
	} {
		if v, ok := data[key].(string); ok {
			*field = v
		}
	}

	if v, ok := data["modality_order"]; ok {
		order, err := parseModalityOrder(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("modality_order: %w", err))
		} else {
			s.ModalityOrder = order
		}
	}

	if v, ok := data["proceed_on_settle_timeout"].(bool); ok {
		s.ProceedOnSettleTimeout = v
	}

	return errors.Join(errs...)
}

func (s *QuizSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for name, d := range map[string]time.Duration{
		"settle_delay":      s.SettleDelay,
		"ready_timeout":     s.ReadyTimeout,
		"block_timeout":     s.BlockTimeout,
		"fallback_cooldown": s.FallbackCooldown,
		"matching_pause":    s.MatchingPause,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	for name, d := range map[string]time.Duration{
		"ready_timeout": s.ReadyTimeout,
		"block_timeout": s.BlockTimeout,
	} {
		if d == 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if err := quiz.ValidateModalityOrder(s.ModalityOrder); err != nil {
		errs = append(errs, err)
	}
	if s.Markers.Block == "" {
		errs = append(errs, errors.New("block_selector is required"))
	}
	if len(s.Markers.Prompts) == 0 {
		errs = append(errs, errors.New("prompt_selectors must not be empty"))
	}
	if len(s.FrameKeywords) == 0 && len(s.FramePatterns) == 0 {
		errs = append(errs, errors.New("frame_keywords or frame_patterns is required"))
	}
	if _, err := quiz.NewGlobHeuristic(s.FramePatterns...); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *QuizSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *QuizSection) reset() {
	loc := quiz.DefaultLocatorOptions()
	dispatch := quiz.DefaultDispatcherOptions()

	s.SettleDelay = loc.SettleDelay
	s.ReadyTimeout = loc.ReadyTimeout
	s.BlockTimeout = dispatch.BlockTimeout
	s.FallbackCooldown = dispatch.FallbackCooldown
	s.MatchingPause = dispatch.MatchingPause
	s.FrameKeywords = append([]string(nil), quiz.DefaultFrameKeywords...)
	s.FramePatterns = nil
	s.Markers = quiz.DefaultExtractorMarkers()
	s.ModalityMarkers = quiz.DefaultModalityMarkers()
	s.ModalityOrder = append([]quiz.Modality(nil), quiz.DefaultModalityOrder...)
	s.PlaceholderAnswer = dispatch.Placeholder
	s.ProceedOnSettleTimeout = false
}

// LocatorOptions builds the locator configuration. Keyword matching is tried
// before glob patterns.
func (s *QuizSection) LocatorOptions() (quiz.LocatorOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts := quiz.LocatorOptions{
		SettleDelay:  s.SettleDelay,
		ReadyTimeout: s.ReadyTimeout,
	}
	if len(s.FrameKeywords) > 0 {
		opts.Heuristics = append(opts.Heuristics, quiz.KeywordHeuristic{Keywords: append([]string(nil), s.FrameKeywords...)})
	}
	if len(s.FramePatterns) > 0 {
		globs, err := quiz.NewGlobHeuristic(s.FramePatterns...)
		if err != nil {
			return quiz.LocatorOptions{}, err
		}
		opts.Heuristics = append(opts.Heuristics, globs)
	}
	return opts, nil
}

// ExtractorMarkers returns the question markup selectors.
func (s *QuizSection) ExtractorMarkers() quiz.ExtractorMarkers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.Markers
	m.Prompts = append([]string(nil), m.Prompts...)
	return m
}

// Classifier returns a marker classifier testing the configured markers in
// modality_order.
func (s *QuizSection) Classifier() (*quiz.Classifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quiz.OrderedMarkerClassifier(s.ModalityMarkers, s.ModalityOrder)
}

// DispatcherOptions returns the dispatcher timings with the stock structural paths.
func (s *QuizSection) DispatcherOptions() quiz.DispatcherOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := quiz.DefaultDispatcherOptions()
	opts.BlockSelector = s.Markers.Block
	opts.BlockTimeout = s.BlockTimeout
	opts.FallbackCooldown = s.FallbackCooldown
	opts.MatchingPause = s.MatchingPause
	opts.Placeholder = s.PlaceholderAnswer
	return opts
}

// GetProceedOnSettleTimeout reports whether a frame that never went idle is still used.
func (s *QuizSection) GetProceedOnSettleTimeout() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ProceedOnSettleTimeout
}

func modalityNames(order []quiz.Modality) []string {
	names := make([]string, len(order))
	for i, m := range order {
		names[i] = string(m)
	}
	return names
}

func parseModalityOrder(v any) ([]quiz.Modality, error) {
	names, ok := stringList(v)
	if !ok {
		return nil, errors.New("expected a list of strings")
	}
	order := make([]quiz.Modality, 0, len(names))
	for _, name := range names {
		m, err := quiz.ParseModality(name)
		if err != nil {
			return nil, err
		}
		order = append(order, m)
	}
	return order, nil
}
