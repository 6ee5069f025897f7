package config

import (
	"testing"

	"github.com/presencekit/bridge/internal/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := NewSettings(PresenceConfig{
		DefaultCategory: "playing",
		ShowButtons:     true,
	}, false)
	require.NoError(t, err)
	return s
}

func TestNewSettingsRejectsBadCategory(t *testing.T) {
	_, err := NewSettings(PresenceConfig{DefaultCategory: "sleeping"}, false)
	assert.Error(t, err)
}

func TestActivityOptions(t *testing.T) {
	s := newSettings(t)
	opts := s.ActivityOptions()
	assert.Equal(t, activity.CategoryPlaying, opts.DefaultCategory)
	assert.True(t, opts.ShowButtons)
	assert.False(t, opts.HideViewChannel)
}

func TestApplyPartialPatch(t *testing.T) {
	s := newSettings(t)

	category := "watching"
	hide := true
	require.NoError(t, s.Apply(Patch{DefaultCategory: &category, HideViewChannel: &hide}))

	snap := s.Snapshot()
	assert.Equal(t, "watching", snap.DefaultCategory)
	assert.True(t, snap.HideViewChannel)
	// Untouched fields keep their values.
	assert.True(t, snap.ShowButtons)
	assert.False(t, snap.ManualShare)
}

func TestApplyRejectsBadCategoryWithoutChanges(t *testing.T) {
	s := newSettings(t)

	category := "sleeping"
	hide := true
	err := s.Apply(Patch{DefaultCategory: &category, HideViewChannel: &hide})
	require.Error(t, err)

	// Nothing changed, including the valid part of the patch.
	snap := s.Snapshot()
	assert.Equal(t, "playing", snap.DefaultCategory)
	assert.False(t, snap.HideViewChannel)
}

func TestTextOverrideToggle(t *testing.T) {
	s := newSettings(t)
	assert.False(t, s.TextOverride())

	s.SetTextOverride(true)
	assert.True(t, s.TextOverride())

	s.SetTextOverride(false)
	assert.False(t, s.TextOverride())
}

func TestManualShare(t *testing.T) {
	s, err := NewSettings(PresenceConfig{DefaultCategory: "playing", ManualShare: true}, false)
	require.NoError(t, err)
	assert.True(t, s.ManualShare())
}
