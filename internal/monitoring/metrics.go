package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	// Connection metrics
	ConnectionState  prometheus.Gauge
	ConnectAttempts  *prometheus.CounterVec
	FramesTotal      *prometheus.CounterVec
	FrameDecodeFails prometheus.Counter

	// Publish metrics
	PublishesTotal *prometheus.CounterVec

	// Resolver metrics
	LookupsTotal   *prometheus.CounterVec
	LookupDuration prometheus.Histogram
	CacheSize      prometheus.Gauge

	// Text bridge metrics
	RelayedMessages prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// New creates a metrics collector registered against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		ConnectionState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_connection_state",
				Help: "Current socket state (0=disconnected, 1=connecting, 2=open, 3=closed)",
			},
		),
		ConnectAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_connect_attempts_total",
				Help: "Total socket connection attempts",
			},
			[]string{"outcome"},
		),
		FramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_frames_total",
				Help: "Total inbound frames by message type",
			},
			[]string{"type"},
		),
		FrameDecodeFails: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_frame_decode_failures_total",
				Help: "Total inbound frames that failed to decode",
			},
		),

		PublishesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_publishes_total",
				Help: "Total activity publishes by kind",
			},
			[]string{"kind"},
		),

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_lookups_total",
				Help: "Total application metadata lookups by outcome",
			},
			[]string{"outcome"},
		),
		LookupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bridge_lookup_duration_seconds",
				Help:    "Application metadata lookup duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		CacheSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_descriptor_cache_size",
				Help: "Number of cached application descriptors",
			},
		),

		RelayedMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_relayed_messages_total",
				Help: "Total chat messages relayed over the text bridge",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
