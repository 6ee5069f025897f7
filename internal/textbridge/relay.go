package textbridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/presencekit/bridge/internal/config"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"go.uber.org/zap"
)

// Outgoing message prefixes. The silent variant requests no notification
// sound on the receiving end.
const (
	prefixSend   = "=="
	prefixSilent = "=/="
)

var errNotConnected = errors.New("text bridge socket is not open")

// frame is the outbound relay message.
type frame struct {
	Content  string `json:"content"`
	SendNow  bool   `json:"sendNow"`
	PopNoise bool   `json:"popNoise"`
}

// OverrideSource reports whether override mode routes unprefixed messages
// to the bridge. Implemented by config.Settings.
type OverrideSource interface {
	TextOverride() bool
}

// Relay is the outbound-only chat relay on the secondary local socket.
type Relay struct {
	url            string
	connectTimeout time.Duration
	dialer         *websocket.Dialer
	opts           OverrideSource
	log            *logging.Logger
	metrics        *monitoring.Metrics

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a relay. The socket is not opened until Connect.
func New(cfg config.TextBridgeConfig, opts OverrideSource, log *logging.Logger, metrics *monitoring.Metrics) *Relay {
	return &Relay{
		url:            cfg.URL,
		connectTimeout: cfg.ConnectTimeout,
		dialer:         websocket.DefaultDialer,
		opts:           opts,
		log:            log,
		metrics:        metrics,
	}
}

// Connect opens the relay socket, closing any existing one first.
func (r *Relay) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
	r.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, r.connectTimeout)
	defer cancel()

	conn, _, err := r.dialer.DialContext(dialCtx, r.url, nil)
	if err != nil {
		r.log.Warn("text bridge connect failed",
			zap.String("url", r.url),
			zap.Error(err))
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	r.log.Info("text bridge open", zap.String("url", r.url))

	// The relay is outbound-only; reads just service control frames and
	// detect the peer going away.
	go r.drain(conn)
	return nil
}

// Stop closes the relay socket.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// Connected reports whether the relay socket is open.
func (r *Relay) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// Intercept decides whether an outgoing chat message routes to the bridge.
// It returns the content the normal send pipeline should proceed with and
// whether the message was consumed. "==" routes to the bridge, "=/=" does
// the same without a notification sound, and override mode inverts the
// default so unprefixed messages route to the bridge instead. A message
// routed to the bridge while the socket is closed is dropped silently.
func (r *Relay) Intercept(content string) (string, bool) {
	stripped, prefixed, noise := stripPrefix(content)

	toBridge := prefixed != r.opts.TextOverride()
	if !toBridge {
		return stripped, false
	}

	err := r.send(frame{Content: stripped, SendNow: true, PopNoise: noise})
	if err != nil {
		r.log.Debug("relay send dropped", zap.Error(err))
	} else {
		r.metrics.RelayedMessages.Inc()
	}
	return "", true
}

// SetTyping relays the typing indicator as a bare text control frame.
func (r *Relay) SetTyping(typing bool) error {
	state := "typing:false"
	if typing {
		state = "typing:true"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return errNotConnected
	}
	return r.conn.WriteMessage(websocket.TextMessage, []byte(state))
}

func (r *Relay) send(f frame) error {
	payload, err := sonic.Marshal(f)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return errNotConnected
	}
	return r.conn.WriteMessage(websocket.TextMessage, payload)
}

func (r *Relay) drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()
	r.log.Info("text bridge closed")
}

// stripPrefix removes a routing prefix and reports whether one was present
// and whether the message should pop a notification sound.
func stripPrefix(content string) (stripped string, prefixed, noise bool) {
	switch {
	case strings.HasPrefix(content, prefixSilent):
		return content[len(prefixSilent):], true, false
	case strings.HasPrefix(content, prefixSend):
		return content[len(prefixSend):], true, true
	default:
		return content, false, true
	}
}
