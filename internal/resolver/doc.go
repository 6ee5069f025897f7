// Package resolver memoizes application metadata for the process lifetime.
//
// Resolution asks the host for the application's identity, then infers a
// presentation category from the public presence-definition repository.
// Descriptors are immutable once cached; concurrent resolutions of the
// same identifier are deduplicated through singleflight so rapid activity
// bursts for one application perform a single upstream lookup.
package resolver
