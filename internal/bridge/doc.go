// Package bridge supervises the persistent WebSocket connection to the
// companion process.
//
// The supervisor owns the single socket handle and its lifecycle:
// connect with a bounded dial, route inbound frames, retract the published
// presence the moment the socket dies. Reconnection is never automatic;
// it is only triggered by an explicit operator action.
//
// Message types (companion -> bridge):
//   - getCurrentUser: request the host's current user identity
//   - setActivity: publish an enriched activity (data = raw activity)
//   - clearActivity: retract the published activity
//
// Unknown types are ignored. A frame that fails to decode is dropped
// without affecting the socket or later frames.
package bridge
