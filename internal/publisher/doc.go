// Package publisher is the thin sink between the bridge and the host's
// presence dispatch bus.
package publisher
