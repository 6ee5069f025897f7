// Package config loads bridge configuration from environment variables
// with an optional YAML file overlay, and owns the runtime-mutable
// operator settings exposed on the admin surface.
package config
