package config

import (
	"fmt"
	"sync"

	"github.com/presencekit/bridge/internal/activity"
)

// Settings holds the runtime-mutable operator toggles. Reads happen on the
// socket read loop, writes on admin API goroutines, so access is guarded.
type Settings struct {
	mu              sync.RWMutex
	defaultCategory activity.Category
	showButtons     bool
	hideViewChannel bool
	manualShare     bool
	textOverride    bool
}

// NewSettings builds runtime settings from loaded configuration.
func NewSettings(presence PresenceConfig, textOverride bool) (*Settings, error) {
	category, err := activity.ParseCategory(presence.DefaultCategory)
	if err != nil {
		return nil, fmt.Errorf("invalid default category: %w", err)
	}
	return &Settings{
		defaultCategory: category,
		showButtons:     presence.ShowButtons,
		hideViewChannel: presence.HideViewChannel,
		manualShare:     presence.ManualShare,
		textOverride:    textOverride,
	}, nil
}

// ActivityOptions returns the preferences consulted during synthesis.
func (s *Settings) ActivityOptions() activity.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activity.Options{
		DefaultCategory: s.defaultCategory,
		ShowButtons:     s.showButtons,
		HideViewChannel: s.hideViewChannel,
	}
}

// ManualShare reports whether automatic presence sharing is disabled.
func (s *Settings) ManualShare() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manualShare
}

// TextOverride reports whether the text bridge routes unprefixed messages.
func (s *Settings) TextOverride() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.textOverride
}

// SetTextOverride toggles the text bridge override mode.
func (s *Settings) SetTextOverride(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textOverride = enabled
}

// Snapshot is the admin surface's view of the current settings.
type Snapshot struct {
	DefaultCategory string `json:"default_category"`
	ShowButtons     bool   `json:"show_buttons"`
	HideViewChannel bool   `json:"hide_view_channel"`
	ManualShare     bool   `json:"manual_share"`
	TextOverride    bool   `json:"text_override"`
}

// Patch is a partial settings update; nil fields are left unchanged.
type Patch struct {
	DefaultCategory *string `json:"default_category,omitempty"`
	ShowButtons     *bool   `json:"show_buttons,omitempty"`
	HideViewChannel *bool   `json:"hide_view_channel,omitempty"`
	ManualShare     *bool   `json:"manual_share,omitempty"`
	TextOverride    *bool   `json:"text_override,omitempty"`
}

// Snapshot returns the current settings values.
func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		DefaultCategory: s.defaultCategory.String(),
		ShowButtons:     s.showButtons,
		HideViewChannel: s.hideViewChannel,
		ManualShare:     s.manualShare,
		TextOverride:    s.textOverride,
	}
}

// Apply applies a partial update, validating the category first so a bad
// patch changes nothing.
func (s *Settings) Apply(patch Patch) error {
	var category activity.Category
	if patch.DefaultCategory != nil {
		parsed, err := activity.ParseCategory(*patch.DefaultCategory)
		if err != nil {
			return err
		}
		category = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.DefaultCategory != nil {
		s.defaultCategory = category
	}
	if patch.ShowButtons != nil {
		s.showButtons = *patch.ShowButtons
	}
	if patch.HideViewChannel != nil {
		s.hideViewChannel = *patch.HideViewChannel
	}
	if patch.ManualShare != nil {
		s.manualShare = *patch.ManualShare
	}
	if patch.TextOverride != nil {
		s.textOverride = *patch.TextOverride
	}
	return nil
}
