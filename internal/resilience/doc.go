// Package resilience provides a circuit breaker guarding the metadata
// repository lookups, so a dead network degrades resolution immediately
// instead of stalling every inbound activity on HTTP retries.
package resilience
