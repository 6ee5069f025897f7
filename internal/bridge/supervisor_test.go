package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/config"
	"github.com/presencekit/bridge/internal/host"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"github.com/presencekit/bridge/internal/publisher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	actions chan *host.Action
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{actions: make(chan *host.Action, 16)}
}

func (f *fakeDispatcher) Dispatch(_ context.Context, action *host.Action) error {
	f.actions <- action
	return nil
}

func (f *fakeDispatcher) next(t *testing.T) *host.Action {
	t.Helper()
	select {
	case action := <-f.actions:
		return action
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
		return nil
	}
}

func (f *fakeDispatcher) assertNoMore(t *testing.T) {
	t.Helper()
	select {
	case action := <-f.actions:
		t.Fatalf("unexpected extra dispatch: %+v", action)
	case <-time.After(100 * time.Millisecond):
	}
}

type fakeUsers struct{}

func (fakeUsers) CurrentUser(context.Context) (*host.User, error) {
	return &host.User{ID: "42", Username: "operator"}, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (f *fakeNotifier) Info(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, message)
}

func (f *fakeNotifier) Warn(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warns = append(f.warns, message)
}

func (f *fakeNotifier) warnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.warns)
}

type fakeResolver struct{ name string }

func (f *fakeResolver) ResolveApplication(_ context.Context, id string) (*activity.Descriptor, error) {
	return &activity.Descriptor{ID: id, Name: f.name}, nil
}

func (f *fakeResolver) ResolveAsset(_ context.Context, _, key string) (string, error) {
	return "img:" + key, nil
}

var upgrader = websocket.Upgrader{}

// newCompanion starts a WebSocket server standing in for the companion
// process and hands accepted connections to the test.
func newCompanion(t *testing.T) (string, chan *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), conns
}

type testHarness struct {
	supervisor *Supervisor
	dispatcher *fakeDispatcher
	notifier   *fakeNotifier
	settings   *config.Settings
}

func newHarness(t *testing.T, url string) *testHarness {
	t.Helper()
	settings, err := config.NewSettings(config.PresenceConfig{
		DefaultCategory: "playing",
		ShowButtons:     true,
	}, false)
	require.NoError(t, err)

	log := logging.NewNop()
	metrics := monitoring.New(prometheus.NewRegistry())
	dispatcher := newFakeDispatcher()
	notifier := &fakeNotifier{}
	pub := publisher.New(dispatcher, log, metrics)
	synth := activity.NewSynthesizer(&fakeResolver{name: "SomeApp"}, settings, log)

	supervisor := New(Params{
		Config:      config.SocketConfig{URL: url, ConnectTimeout: time.Second},
		Synthesizer: synth,
		Publisher:   pub,
		Users:       fakeUsers{},
		Notifier:    notifier,
		Settings:    settings,
		Log:         log,
		Metrics:     metrics,
	})
	return &testHarness{supervisor: supervisor, dispatcher: dispatcher, notifier: notifier, settings: settings}
}

func TestStartOpensSocket(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)

	require.NoError(t, h.supervisor.Start(context.Background()))
	<-conns
	assert.Equal(t, StateOpen, h.supervisor.State())
	assert.NotEmpty(t, h.supervisor.SessionID())
}

func TestSetActivityPublishes(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	payload := `{"type":"setActivity","data":{"application_id":"100","state":"browsing"}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	action := h.dispatcher.next(t)
	require.NotNil(t, action.Activity)
	assert.Equal(t, "SomeApp", action.Activity.Name)
	assert.Equal(t, "browsing", action.Activity.State)
	assert.Equal(t, publisher.SocketID, action.SocketID)
}

func TestClearActivityPublishesNull(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"clearActivity"}`)))

	action := h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
}

func TestGetCurrentUserEcho(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"getCurrentUser"}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply struct {
		Type string     `json:"type"`
		User *host.User `json:"user"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "currentUser", reply.Type)
	require.NotNil(t, reply.User)
	assert.Equal(t, "42", reply.User.ID)
	assert.Equal(t, "operator", reply.User.Username)
}

func TestSocketCloseRetractsPresenceOnce(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	conn.Close()

	action := h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
	h.dispatcher.assertNoMore(t)

	require.Eventually(t, func() bool {
		return h.supervisor.State() == StateClosed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUnknownAndMalformedFramesIgnored(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"somethingElse"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"clearActivity"}`)))

	// Only the clear produces a dispatch; bad frames do not kill the loop.
	action := h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
	h.dispatcher.assertNoMore(t)
}

func TestConnectFailureNotifiesOnlyAfterReconnectRequest(t *testing.T) {
	h := newHarness(t, "ws://127.0.0.1:1")

	err := h.supervisor.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, h.notifier.warnCount())
	assert.Equal(t, StateDisconnected, h.supervisor.State())

	err = h.supervisor.Reconnect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, h.notifier.warnCount())
}

func TestReconnectReplacesConnection(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	first := <-conns

	require.NoError(t, h.supervisor.Reconnect(context.Background()))
	<-conns

	// The dropped first connection retracts the presence.
	action := h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
	assert.Equal(t, StateOpen, h.supervisor.State())

	first.Close()
}

func TestManualShareSuppressesActivityPublish(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	manual := true
	require.NoError(t, h.settings.Apply(config.Patch{ManualShare: &manual}))
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"setActivity","data":{"application_id":"100"}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"clearActivity"}`)))

	// The set is skipped; the first dispatch observed is the clear.
	action := h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
	h.dispatcher.assertNoMore(t)
}

func TestStopClearsPresenceWithoutClosingSocket(t *testing.T) {
	url, conns := newCompanion(t)
	h := newHarness(t, url)
	require.NoError(t, h.supervisor.Start(context.Background()))
	conn := <-conns

	h.supervisor.Stop(context.Background())

	action := h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
	assert.Equal(t, StateOpen, h.supervisor.State())

	// The socket still works after Stop.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"clearActivity"}`)))
	action = h.dispatcher.next(t)
	assert.Nil(t, action.Activity)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", State(42).String())
}
