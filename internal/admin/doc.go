// Package admin exposes the bridge's local control surface over HTTP:
// health, Prometheus metrics, runtime settings, and the reconnect and
// override commands the operator would otherwise reach through the host's
// command palette.
package admin
