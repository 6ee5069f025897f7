package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/config"
	"github.com/presencekit/bridge/internal/host"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service resolves application identifiers to cached descriptors and asset
// keys to host-displayable image references.
type Service struct {
	apps    host.ApplicationLookup
	assets  host.AssetLookup
	meta    *metadataClient
	log     *logging.Logger
	metrics *monitoring.Metrics

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*activity.Descriptor
}

// New creates a resolver backed by the host lookups and the public
// presence-definition repository.
func New(apps host.ApplicationLookup, assets host.AssetLookup, cfg config.MetadataConfig, log *logging.Logger, metrics *monitoring.Metrics) *Service {
	return &Service{
		apps:    apps,
		assets:  assets,
		meta:    newMetadataClient(cfg.RepoURL, cfg.RateLimit),
		log:     log,
		metrics: metrics,
		cache:   make(map[string]*activity.Descriptor),
	}
}

// ResolveApplication returns the cached descriptor for id, resolving and
// caching it on first use. Concurrent resolutions of the same identifier
// share one lookup.
func (s *Service) ResolveApplication(ctx context.Context, id string) (*activity.Descriptor, error) {
	if d := s.cached(id); d != nil {
		return d, nil
	}

	v, err, _ := s.group.Do(id, func() (interface{}, error) {
		if d := s.cached(id); d != nil {
			return d, nil
		}
		return s.resolve(ctx, id)
	})
	if err != nil {
		s.metrics.LookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	return v.(*activity.Descriptor), nil
}

// ResolveAsset returns the first image reference of the pair the host
// reports for the given asset key.
func (s *Service) ResolveAsset(ctx context.Context, appID, key string) (string, error) {
	images, err := s.assets.AssetImages(ctx, appID, key)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", fmt.Errorf("no image for asset %q", key)
	}
	return images[0], nil
}

func (s *Service) cached(id string) *activity.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[id]
}

func (s *Service) resolve(ctx context.Context, id string) (*activity.Descriptor, error) {
	start := time.Now()

	app, err := s.apps.Application(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve application %s: %w", id, err)
	}

	d := &activity.Descriptor{
		ID:        id,
		Name:      app.Name,
		Icon:      app.Icon,
		HasAssets: true,
	}
	if app.Name != "" {
		if category, ok := s.infer(ctx, app.Name); ok {
			d.Category = category
			d.HasCategory = true
		}
	}

	s.mu.Lock()
	s.cache[id] = d
	size := len(s.cache)
	s.mu.Unlock()

	s.metrics.LookupsTotal.WithLabelValues("ok").Inc()
	s.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	s.metrics.CacheSize.Set(float64(size))

	s.log.Debug("resolved application",
		zap.String("application_id", id),
		zap.String("name", d.Name),
		zap.Bool("has_category", d.HasCategory),
		zap.Stringer("category", d.Category))

	return d, nil
}
