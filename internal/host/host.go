package host

import (
	"context"

	"github.com/presencekit/bridge/internal/activity"
)

// Application is the host's view of an application: identity and icon,
// before any category inference.
type Application struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// User is the host's current user identity, echoed back to the companion.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Action is the unit posted to the host's dispatch bus. Activity is kept
// even when nil: a null activity retracts the bridge's presence slot.
type Action struct {
	Type     string             `json:"type"`
	Activity *activity.Activity `json:"activity"`
	SocketID string             `json:"socketId"`
}

// ApplicationLookup resolves an application identifier to its descriptor.
type ApplicationLookup interface {
	Application(ctx context.Context, id string) (*Application, error)
}

// AssetLookup resolves a named asset key to its image reference pair.
type AssetLookup interface {
	AssetImages(ctx context.Context, appID, key string) ([]string, error)
}

// UserProvider exposes the host's current user identity.
type UserProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Dispatcher is the host's presence-dispatch boundary.
type Dispatcher interface {
	Dispatch(ctx context.Context, action *Action) error
}

// Notifier surfaces transient operator-facing notifications.
type Notifier interface {
	Info(ctx context.Context, message string)
	Warn(ctx context.Context, message string)
}
