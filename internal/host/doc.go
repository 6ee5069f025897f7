// Package host defines the boundary to the embedding host: application and
// asset lookups, the current-user identity, the presence dispatch bus, and
// operator notifications. The bridge only ever talks to these interfaces;
// the HTTP client here is the default implementation against the host's
// local API.
package host
