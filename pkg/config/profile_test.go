package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/quizpilot/pkg/act"
)

func TestProfileSection(t *testing.T) {
	s := NewProfileSection()
	assert.Equal(t, SectionIDProfile, s.ID())
	assert.True(t, s.Profile().IsZero())

	require.NoError(t, s.SetData(map[string]any{
		"name":          "Ada",
		"background":    "second-year chemistry",
		"writing_style": "concise",
	}))
	assert.Equal(t, act.Profile{
		Name:         "Ada",
		Background:   "second-year chemistry",
		WritingStyle: "concise",
	}, s.Profile())
	assert.Equal(t, "", s.Data()["goals"])

	s.Reset()
	assert.True(t, s.Profile().IsZero())
}
