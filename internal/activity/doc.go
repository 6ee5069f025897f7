// Package activity defines the bridge's activity model and the synthesizer
// that turns untrusted inbound payloads into publishable presence updates.
//
// Synthesis resolves the referenced application, infers a presentation
// category when none is supplied, resolves asset image references with
// per-slot placeholder fallbacks, reconciles partial timestamp ranges into
// display-ready captions, and prunes the result into a minimal payload.
// Failures along the way degrade the richness of the published activity
// rather than blocking publication.
package activity
