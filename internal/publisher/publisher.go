package publisher

import (
	"context"

	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/host"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"go.uber.org/zap"
)

// SocketID tags every dispatched action so the host can tell this bridge's
// presence slot apart from other sources.
const SocketID = "presence-bridge"

// actionType is the host dispatch bus action for presence updates.
const actionType = "LOCAL_ACTIVITY_UPDATE"

// Publisher pushes synthesized activities onto the host's dispatch bus.
// Dispatch is fire-and-forget: failures are logged, never propagated.
type Publisher struct {
	dispatcher host.Dispatcher
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// New creates a publisher.
func New(dispatcher host.Dispatcher, log *logging.Logger, metrics *monitoring.Metrics) *Publisher {
	return &Publisher{
		dispatcher: dispatcher,
		log:        log,
		metrics:    metrics,
	}
}

// Publish pushes act as the bridge's current activity. A nil act retracts
// the presence.
func (p *Publisher) Publish(ctx context.Context, act *activity.Activity) {
	kind := "activity"
	if act == nil {
		kind = "clear"
	}

	err := p.dispatcher.Dispatch(ctx, &host.Action{
		Type:     actionType,
		Activity: act,
		SocketID: SocketID,
	})
	if err != nil {
		p.log.Warn("presence dispatch failed", zap.Error(err))
		return
	}
	p.metrics.PublishesTotal.WithLabelValues(kind).Inc()
}

// Clear retracts the bridge's presence.
func (p *Publisher) Clear(ctx context.Context) {
	p.Publish(ctx, nil)
}
