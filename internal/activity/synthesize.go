package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/presencekit/bridge/internal/logging"
	"go.uber.org/zap"
)

// placeholderAppName is the companion's own idle placeholder application.
// Activities resolving to it describe the companion itself, not the user.
const placeholderAppName = "PreMiD"

// videoPlatformName triggers the view-channel button trimming preference.
const videoPlatformName = "YouTube"

// Placeholder asset keys per slot, used when an inbound key is absent so a
// resolution miss never leaves a slot empty.
const (
	placeholderLargeKey = "premid"
	placeholderSmallKey = "unknown"
)

// Resolver looks up application metadata and asset image references.
type Resolver interface {
	ResolveApplication(ctx context.Context, id string) (*Descriptor, error)
	ResolveAsset(ctx context.Context, appID, key string) (string, error)
}

// Options are the operator preferences consulted during synthesis.
type Options struct {
	DefaultCategory Category
	ShowButtons     bool
	HideViewChannel bool
}

// OptionsSource provides the current operator preferences. Implemented by
// config.Settings so admin-surface updates take effect immediately.
type OptionsSource interface {
	ActivityOptions() Options
}

// Synthesizer transforms inbound raw activities into publishable ones.
type Synthesizer struct {
	resolver Resolver
	opts     OptionsSource
	log      *logging.Logger
	now      func() time.Time
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(resolver Resolver, opts OptionsSource, log *logging.Logger) *Synthesizer {
	return &Synthesizer{
		resolver: resolver,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Synthesize enriches raw into a publishable activity, or returns nil when
// the activity should be suppressed. Resolution failures degrade the result
// instead of aborting it.
func (s *Synthesizer) Synthesize(ctx context.Context, raw *RawActivity) *Activity {
	app, err := s.resolver.ResolveApplication(ctx, raw.ApplicationID)
	if err != nil {
		s.log.Warn("application resolution failed",
			zap.String("application_id", raw.ApplicationID),
			zap.Error(err))
		app = &Descriptor{ID: raw.ApplicationID}
	}

	if app.Name == "" || app.Name == placeholderAppName {
		return nil
	}

	opts := s.opts.ActivityOptions()

	category := opts.DefaultCategory
	if app.HasCategory {
		category = app.Category
	}

	act := &Activity{
		ApplicationID: raw.ApplicationID,
		Name:          app.Name,
		State:         raw.State,
		Details:       raw.Details,
		Type:          category,
		Flags:         FlagInstance,
	}

	assets := &Assets{}
	var largeKey, smallKey string
	if raw.Assets != nil {
		largeKey = raw.Assets.LargeImage
		smallKey = raw.Assets.SmallImage
		assets.LargeText = raw.Assets.LargeText
		assets.SmallText = raw.Assets.SmallText
	}
	assets.LargeImage = s.resolveAsset(ctx, raw.ApplicationID, largeKey, placeholderLargeKey)
	assets.SmallImage = s.resolveAsset(ctx, raw.ApplicationID, smallKey, placeholderSmallKey)

	// A bare "playing" label conveys too little context, so Playing gets
	// provenance branding instead of the inbound caption.
	if category == CategoryPlaying {
		assets.LargeText = "Presence Bridge v" + Version
	}

	if opts.ShowButtons && len(raw.Buttons) > 0 {
		s.applyButtons(act, raw, app.Name, opts)
	}

	s.applyTimestamps(act, assets, raw, category)

	act.Assets = assets
	act.prune()
	return act
}

// applyButtons copies buttons through, trimming to the first entry when the
// operator hides the view-channel button on the known video platform.
func (s *Synthesizer) applyButtons(act *Activity, raw *RawActivity, appName string, opts Options) {
	var urls []string
	if raw.Metadata != nil {
		urls = raw.Metadata.ButtonURLs
	}

	if appName == videoPlatformName && opts.HideViewChannel {
		act.Buttons = raw.Buttons[:1]
		if len(urls) > 0 {
			act.Metadata = &Metadata{ButtonURLs: urls[:1]}
		}
		return
	}

	act.Buttons = raw.Buttons
	act.Metadata = raw.Metadata
}

// applyTimestamps reconciles the optional start/end pair. The host renders
// no live countdown for Watching, so a derived caption is the only way to
// convey elapsed or remaining time for that category.
func (s *Synthesizer) applyTimestamps(act *Activity, assets *Assets, raw *RawActivity, category Category) {
	if raw.Timestamps == nil {
		return
	}
	start, end := raw.Timestamps.Start, raw.Timestamps.End

	switch {
	case start != 0 && end != 0:
		act.Timestamps = &Timestamps{Start: start, End: end}
	case start != 0:
		if category == CategoryWatching {
			assets.LargeText = formatClock(s.now().Unix()-start) + " elapsed"
		}
		act.Timestamps = &Timestamps{Start: start}
	case end != 0:
		if category == CategoryWatching {
			assets.LargeText = formatClock(end-s.now().Unix()) + " left"
		}
		if act.Timestamps == nil {
			act.Timestamps = &Timestamps{}
		}
		act.Timestamps.End = end
	}
}

// resolveAsset maps an asset key to a displayable image reference, falling
// back to the slot's placeholder key when the inbound key is absent and to
// the key itself when the lookup fails.
func (s *Synthesizer) resolveAsset(ctx context.Context, appID, key, placeholder string) string {
	if key == "" {
		key = placeholder
	}
	ref, err := s.resolver.ResolveAsset(ctx, appID, key)
	if err != nil || ref == "" {
		s.log.Debug("asset resolution failed",
			zap.String("application_id", appID),
			zap.String("key", key),
			zap.Error(err))
		return key
	}
	return ref
}

// formatClock renders a second count as MM:SS, clamping negatives to zero.
func formatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
