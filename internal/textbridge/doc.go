// Package textbridge relays prefixed outgoing chat messages over a second
// local WebSocket endpoint instead of the host's normal send pipeline.
package textbridge
