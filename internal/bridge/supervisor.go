package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/config"
	"github.com/presencekit/bridge/internal/host"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"github.com/presencekit/bridge/internal/publisher"
	"go.uber.org/zap"
)

// State is the supervisor's view of the companion socket.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Params bundles the supervisor's collaborators.
type Params struct {
	Config      config.SocketConfig
	Synthesizer *activity.Synthesizer
	Publisher   *publisher.Publisher
	Users       host.UserProvider
	Notifier    host.Notifier
	Settings    *config.Settings
	Log         *logging.Logger
	Metrics     *monitoring.Metrics
}

// Supervisor owns the single companion socket and its lifecycle. Inbound
// frames are processed strictly in arrival order on one read goroutine.
type Supervisor struct {
	url            string
	connectTimeout time.Duration
	dialer         *websocket.Dialer
	synth          *activity.Synthesizer
	pub            *publisher.Publisher
	users          host.UserProvider
	notify         host.Notifier
	settings       *config.Settings
	log            *logging.Logger
	metrics        *monitoring.Metrics
	sessionID      string

	mu           sync.Mutex
	conn         *websocket.Conn
	state        State
	reconnecting bool
}

// New creates a supervisor. The socket is not opened until Start.
func New(p Params) *Supervisor {
	return &Supervisor{
		url:            p.Config.URL,
		connectTimeout: p.Config.ConnectTimeout,
		dialer:         websocket.DefaultDialer,
		synth:          p.Synthesizer,
		pub:            p.Publisher,
		users:          p.Users,
		notify:         p.Notifier,
		settings:       p.Settings,
		log:            p.Log,
		metrics:        p.Metrics,
		sessionID:      uuid.NewString(),
	}
}

// Start opens the companion socket, closing any existing one first so a
// restart is idempotent. The dial is bounded by the connect timeout; on
// failure the attempt is logged, and a retry notification is surfaced only
// when the attempt followed an explicit reconnect request.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	wasReconnecting := s.reconnecting
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	conn, _, err := s.dialer.DialContext(dialCtx, s.url, nil)
	if err != nil {
		s.mu.Lock()
		s.setStateLocked(StateDisconnected)
		s.reconnecting = false
		s.mu.Unlock()

		s.metrics.ConnectAttempts.WithLabelValues("failure").Inc()
		s.log.Warn("companion socket connect failed",
			zap.String("url", s.url),
			zap.Error(err))
		if wasReconnecting {
			s.notify.Warn(ctx, "Could not reach the companion process. Is it running? Trigger a reconnect to retry.")
		}
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.setStateLocked(StateOpen)
	s.reconnecting = false
	s.mu.Unlock()

	s.metrics.ConnectAttempts.WithLabelValues("success").Inc()
	s.notify.Info(ctx, "Connected to companion process")
	s.log.Info("companion socket open",
		zap.String("url", s.url),
		zap.String("session", s.sessionID))

	go s.readLoop(ctx, conn)
	return nil
}

// Stop retracts the published activity. The socket is left alone so a
// still-running companion keeps its session.
func (s *Supervisor) Stop(ctx context.Context) {
	s.pub.Clear(ctx)
}

// Reconnect force-closes the socket and starts over, flagging the attempt
// so a connect failure surfaces a retry notification.
func (s *Supervisor) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	s.reconnecting = true
	s.mu.Unlock()
	return s.Start(ctx)
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the per-process session correlation id.
func (s *Supervisor) SessionID() string {
	return s.sessionID
}

// readLoop processes frames sequentially until the socket dies. Replies are
// written from this goroutine only, so no write lock is needed.
func (s *Supervisor) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer s.handleClose(ctx, conn)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Debug("socket read ended", zap.Error(err))
			}
			return
		}
		s.handleFrame(ctx, conn, frame)
	}
}

// handleClose retracts the presence exactly once per connection: it is only
// ever valid while the socket is live, whatever caused the close.
func (s *Supervisor) handleClose(ctx context.Context, conn *websocket.Conn) {
	conn.Close()

	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.setStateLocked(StateClosed)
	}
	s.mu.Unlock()

	s.pub.Clear(ctx)
	s.log.Info("companion socket closed")
}

func (s *Supervisor) handleFrame(ctx context.Context, conn *websocket.Conn, frame []byte) {
	var env Envelope
	if err := sonic.Unmarshal(frame, &env); err != nil {
		s.metrics.FrameDecodeFails.Inc()
		s.log.Warn("malformed frame", zap.Error(err))
		return
	}
	s.metrics.FramesTotal.WithLabelValues(frameLabel(env.Type)).Inc()

	switch env.Type {
	case msgGetCurrentUser:
		s.replyCurrentUser(ctx, conn)
	case msgSetActivity:
		s.handleSetActivity(ctx, env.Data)
	case msgClearActivity:
		s.pub.Clear(ctx)
	default:
		// Unknown types are ignored without error.
	}
}

func (s *Supervisor) replyCurrentUser(ctx context.Context, conn *websocket.Conn) {
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		s.log.Warn("current user lookup failed", zap.Error(err))
		return
	}

	payload, err := sonic.Marshal(userReply{Type: msgCurrentUser, User: user})
	if err != nil {
		s.log.Warn("current user encode failed", zap.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.log.Warn("current user reply failed", zap.Error(err))
	}
}

func (s *Supervisor) handleSetActivity(ctx context.Context, data []byte) {
	var raw activity.RawActivity
	if err := sonic.Unmarshal(data, &raw); err != nil {
		s.metrics.FrameDecodeFails.Inc()
		s.log.Warn("malformed activity payload", zap.Error(err))
		return
	}
	if raw.ApplicationID == "" {
		s.log.Debug("activity without application id ignored")
		return
	}
	if s.settings.ManualShare() {
		s.log.Debug("manual share enabled, activity not published")
		return
	}

	act := s.synth.Synthesize(ctx, &raw)
	s.pub.Publish(ctx, act)
}

// setStateLocked updates the state and its gauge. Callers must hold s.mu.
func (s *Supervisor) setStateLocked(state State) {
	s.state = state
	s.metrics.ConnectionState.Set(float64(state))
}
