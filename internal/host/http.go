package host

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/logging"
	"go.uber.org/zap"
)

// Client implements the host boundary against the host's local HTTP API.
type Client struct {
	http *resty.Client
	log  *logging.Logger
}

// NewClient creates a host API client rooted at base.
func NewClient(base string, log *logging.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "presence-bridge/"+activity.Version).
		SetTransport(retryClient.HTTPClient.Transport)

	return &Client{http: httpClient, log: log}
}

// Application looks up an application's identity by identifier.
func (c *Client) Application(ctx context.Context, id string) (*Application, error) {
	var app Application
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&app).
		Get(fmt.Sprintf("/applications/%s/rpc", id))
	if err != nil {
		return nil, fmt.Errorf("application lookup: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("application lookup: %s", resp.Status())
	}
	return &app, nil
}

// AssetImages resolves a named asset key to its image reference pair.
func (c *Client) AssetImages(ctx context.Context, appID, key string) ([]string, error) {
	var images []string
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("name", key).
		SetResult(&images).
		Get(fmt.Sprintf("/applications/%s/assets", appID))
	if err != nil {
		return nil, fmt.Errorf("asset lookup: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("asset lookup: %s", resp.Status())
	}
	return images, nil
}

// CurrentUser returns the host's current user identity.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/users/@me")
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("current user: %s", resp.Status())
	}
	return &user, nil
}

// Dispatch posts an action onto the host's dispatch bus.
func (c *Client) Dispatch(ctx context.Context, action *Action) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(action).
		Post("/dispatch")
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("dispatch: %s", resp.Status())
	}
	return nil
}

// Info posts a transient informational toast to the host.
func (c *Client) Info(ctx context.Context, message string) {
	c.notify(ctx, "info", message)
}

// Warn posts a warning toast to the host.
func (c *Client) Warn(ctx context.Context, message string) {
	c.notify(ctx, "warning", message)
}

func (c *Client) notify(ctx context.Context, level, message string) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"level": level, "message": message}).
		Post("/notifications")
	if err != nil || resp.IsError() {
		// Notifications are best-effort.
		c.log.Debug("notification delivery failed",
			zap.String("level", level),
			zap.Error(err))
	}
}
