package config

import (
	"sync"

	"github.com/entrhq/quizpilot/pkg/act"
)

// SectionIDProfile is the identifier for the student profile section
const SectionIDProfile = "profile"

// ProfileSection describes the student quizzes are answered as. It only
// shapes answers the page actor writes.
type ProfileSection struct {
	mu      sync.RWMutex
	profile act.Profile
}

// NewProfileSection creates an empty profile.
func NewProfileSection() *ProfileSection {
	return &ProfileSection{}
}

func (s *ProfileSection) ID() string    { return SectionIDProfile }
func (s *ProfileSection) Title() string { return "Student Profile" }

func (s *ProfileSection) Description() string {
	return "Who the quiz is taken as: name, background, goals and writing style for free-text answers."
}

func (s *ProfileSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"name":          s.profile.Name,
		"background":    s.profile.Background,
		"goals":         s.profile.Goals,
		"writing_style": s.profile.WritingStyle,
	}
}

func (s *ProfileSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, field := range map[string]*string{
		"name":          &s.profile.Name,
		"background":    &s.profile.Background,
		"goals":         &s.profile.Goals,
		"writing_style": &s.profile.WritingStyle,
	} {
		if v, ok := data[key].(string); ok {
			*field = v
		}
	}
	return nil
}

func (s *ProfileSection) Validate() error { return nil }

func (s *ProfileSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = act.Profile{}
}

// Profile returns a copy of the profile.
func (s *ProfileSection) Profile() act.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}
