package bridge

import (
	"encoding/json"

	"github.com/presencekit/bridge/internal/host"
)

// Message types recognized on the companion socket.
const (
	msgGetCurrentUser = "getCurrentUser"
	msgSetActivity    = "setActivity"
	msgClearActivity  = "clearActivity"
	msgCurrentUser    = "currentUser"
)

// Envelope frames every inbound companion message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// userReply is the response envelope for getCurrentUser.
type userReply struct {
	Type string     `json:"type"`
	User *host.User `json:"user"`
}

// frameLabel maps a message type to a bounded metric label.
func frameLabel(msgType string) string {
	switch msgType {
	case msgGetCurrentUser, msgSetActivity, msgClearActivity:
		return msgType
	default:
		return "unknown"
	}
}
