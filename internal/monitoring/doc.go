// Package monitoring provides Prometheus metrics for the bridge.
//
// Metrics are registered against an injected registry so tests can create
// collectors without colliding with the default global registerer.
package monitoring
