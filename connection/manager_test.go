package connection

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"eon-notify/data"
	"eon-notify/logger"
	"eon-notify/toast"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zapcore"
)

func TestMain(m *testing.M) {
	logger.Log = logger.NewTestSink(zapcore.InfoLevel).Logger
	os.Exit(m.Run())
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

type countingToaster struct {
	mu     sync.Mutex
	toasts []toast.Toast
}

func (c *countingToaster) Show(t toast.Toast) {
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.mu.Unlock()
}

func (c *countingToaster) snapshot() []toast.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]toast.Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

func testSession() data.Session {
	return data.Session{UserID: "u1", Role: data.ROLE_STUDENT, AuthToken: "token"}
}

func testOptions(url string) Options {
	return Options{
		URL:                  url,
		MaxReconnectAttempts: 3,
		ReconnectFloor:       5 * time.Millisecond,
		ReconnectCeiling:     20 * time.Millisecond,
		PingInterval:         time.Second,
		PongWait:             5 * time.Second,
	}
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func writeFrame(conn *websocket.Conn, event string, payload map[string]any) error {
	raw, _ := json.Marshal(payload)
	frame, _ := json.Marshal(data.Frame{Event: event, Data: raw})
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func TestConnectJoinsRoomAndDispatches(t *testing.T) {
	joined := make(chan data.Frame, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization header = %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame data.Frame
		_ = json.Unmarshal(raw, &frame)
		joined <- frame

		_ = writeFrame(conn, data.ADMIN_USER_REGISTERED, map[string]any{
			"userName":  "Nina",
			"timestamp": "2026-08-28T10:00:00Z",
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	received := make(chan data.DomainEvent, 1)
	m := NewManager(testOptions(wsURL(server)), nil)
	defer m.Close()
	m.Subscribe(data.ADMIN_USER_REGISTERED, func(evt data.DomainEvent) { received <- evt })

	m.Connect(testSession())

	select {
	case frame := <-joined:
		if frame.Event != data.JOIN_ROOM {
			t.Fatalf("first frame = %q, want join", frame.Event)
		}
		var body map[string]string
		_ = json.Unmarshal(frame.Data, &body)
		if body["userId"] != "u1" {
			t.Fatalf("join payload = %v", body)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server never saw the join frame")
	}

	select {
	case evt := <-received:
		if evt.EventType != data.ADMIN_USER_REGISTERED {
			t.Fatalf("eventType = %q", evt.EventType)
		}
		if data.PayloadString(evt.Payload, "userName") != "Nina" {
			t.Fatalf("payload = %v", evt.Payload)
		}
		if evt.Timestamp != "2026-08-28T10:00:00Z" {
			t.Fatalf("timestamp = %q", evt.Timestamp)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("subscriber never received the event")
	}

	last, ok := m.LastEvent(data.ADMIN_USER_REGISTERED)
	if !ok || data.PayloadString(last.Payload, "userName") != "Nina" {
		t.Fatalf("LastEvent = %+v, ok=%v", last, ok)
	}

	status := m.Status()
	if !status.IsConnected || status.LastConnectedAt == nil {
		t.Fatalf("status = %+v", status)
	}
	if status.MaxReconnectAttempts != 3 {
		t.Fatalf("maxReconnectAttempts = %d", status.MaxReconnectAttempts)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	var upgrades atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upgrades.Add(1)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	m := NewManager(testOptions(wsURL(server)), nil)
	defer m.Close()

	m.Connect(testSession())
	waitFor(t, "connection", func() bool { return m.Status().IsConnected })
	m.Connect(testSession())
	m.Connect(testSession())

	time.Sleep(100 * time.Millisecond)
	if got := upgrades.Load(); got != 1 {
		t.Fatalf("upgrades = %d, want 1", got)
	}
}

func TestConnectRejectsInvalidSession(t *testing.T) {
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	defer m.Close()
	m.Connect(data.Session{UserID: "u1"})
	time.Sleep(20 * time.Millisecond)
	if m.Status().IsConnected || m.Status().ReconnectAttempts != 0 {
		t.Fatalf("invalid session must not dial: %+v", m.Status())
	}
}

func TestDisconnectDropsInFlightFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	var delivered atomic.Int32
	m := NewManager(testOptions(wsURL(server)), nil)
	defer m.Close()
	m.Subscribe(data.SYSTEM_MAINTENANCE, func(data.DomainEvent) { delivered.Add(1) })

	m.Connect(testSession())
	waitFor(t, "connection", func() bool { return m.Status().IsConnected })

	m.mu.Lock()
	staleGen := m.gen
	m.mu.Unlock()

	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE, Payload: map[string]any{}})
	if delivered.Load() != 1 {
		t.Fatalf("delivered = %d before disconnect", delivered.Load())
	}

	m.Disconnect()

	// a frame that was already in the transport carries the old generation
	raw, _ := json.Marshal(data.Frame{Event: data.SYSTEM_MAINTENANCE})
	m.handleFrame(raw, staleGen)

	if delivered.Load() != 1 {
		t.Fatalf("stale frame was dispatched, delivered = %d", delivered.Load())
	}
	if _, ok := m.LastEvent(data.SYSTEM_MAINTENANCE); ok {
		t.Fatal("last-event slots must be cleared on disconnect")
	}
	if m.Status().IsConnected {
		t.Fatal("still connected after Disconnect")
	}
}

func TestReconnectExhaustionToasts(t *testing.T) {
	// grab a port with nothing listening on it
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	toaster := &countingToaster{}
	m := NewManager(testOptions("ws://"+addr+"/ws"), toaster)
	defer m.Close()

	m.Connect(testSession())
	waitFor(t, "connection-lost toast", func() bool { return len(toaster.snapshot()) == 1 })

	shown := toaster.snapshot()[0]
	if shown.Title != "Connection lost" || !shown.Important {
		t.Fatalf("toast = %+v", shown)
	}

	status := m.Status()
	if status.IsConnected {
		t.Fatal("status claims connected")
	}
	if status.ReconnectAttempts != 3 {
		t.Fatalf("reconnectAttempts = %d, want 3", status.ReconnectAttempts)
	}

	// the session survives a transport failure so a later manual Connect works
	m.mu.Lock()
	hasSession := m.session != nil
	m.mu.Unlock()
	if !hasSession {
		t.Fatal("session cleared on transport failure")
	}
}

func TestUnauthorizedDialGivesUpImmediately(t *testing.T) {
	var dials atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	toaster := &countingToaster{}
	m := NewManager(testOptions(wsURL(server)), toaster)
	defer m.Close()

	m.Connect(testSession())
	waitFor(t, "give-up", func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return !m.running
	})
	time.Sleep(50 * time.Millisecond)

	if got := dials.Load(); got != 1 {
		t.Fatalf("dials = %d, auth rejection must not retry", got)
	}
	if len(toaster.snapshot()) != 0 {
		t.Fatal("auth rejection must not raise the connection-lost toast")
	}

	m.mu.Lock()
	hasSession := m.session != nil
	m.mu.Unlock()
	if hasSession {
		t.Fatal("rejected session must be cleared")
	}
}

func TestAuthCloseDoesNotReconnect(t *testing.T) {
	var upgrades atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upgrades.Add(1)
		defer conn.Close()

		// drain the join frame, then expel the session
		_, _, _ = conn.ReadMessage()
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	m := NewManager(testOptions(wsURL(server)), nil)
	defer m.Close()

	m.Connect(testSession())
	waitFor(t, "give-up", func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return upgrades.Load() >= 1 && !m.running
	})
	time.Sleep(50 * time.Millisecond)

	if got := upgrades.Load(); got != 1 {
		t.Fatalf("upgrades = %d, auth close must not reconnect", got)
	}
	m.mu.Lock()
	hasSession := m.session != nil
	m.mu.Unlock()
	if hasSession {
		t.Fatal("expelled session must be cleared")
	}
}

func TestDropAndReconnect(t *testing.T) {
	var upgrades atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := upgrades.Add(1)
		if n == 1 {
			// drop the first connection abruptly after the join frame
			_, _, _ = conn.ReadMessage()
			conn.Close()
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	m := NewManager(testOptions(wsURL(server)), nil)
	defer m.Close()

	m.Connect(testSession())
	waitFor(t, "reconnect", func() bool {
		return upgrades.Load() >= 2 && m.Status().IsConnected
	})

	status := m.Status()
	if status.ReconnectAttempts != 0 {
		t.Fatalf("attempt counter not reset after reconnect: %d", status.ReconnectAttempts)
	}
}

func TestOwnPhotoUpdateToasts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
		_ = writeFrame(conn, data.USER_PHOTO_UPDATED, map[string]any{"userId": "u1", "photoUrl": "https://cdn/x.jpg"})
		_ = writeFrame(conn, data.USER_PHOTO_UPDATED, map[string]any{"userId": "someone-else"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	toaster := &countingToaster{}
	m := NewManager(testOptions(wsURL(server)), toaster)
	defer m.Close()

	seen := make(chan struct{}, 2)
	m.Subscribe(data.USER_PHOTO_UPDATED, func(data.DomainEvent) { seen <- struct{}{} })

	m.Connect(testSession())
	for i := 0; i < 2; i++ {
		select {
		case <-seen:
		case <-time.After(3 * time.Second):
			t.Fatal("photo events not delivered")
		}
	}

	toasts := toaster.snapshot()
	if len(toasts) != 1 {
		t.Fatalf("toasts = %d, only the own-photo event should toast", len(toasts))
	}
	if toasts[0].Title != "Profile photo updated" {
		t.Fatalf("toast = %+v", toasts[0])
	}
}

func TestEmitWhenDisconnected(t *testing.T) {
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	defer m.Close()
	if err := m.Emit(data.REFRESH_PHOTO, map[string]string{"userId": "u1"}); err != ErrNotConnected {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	var delivered atomic.Int32
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	defer m.Close()

	id := m.Subscribe(data.SYSTEM_MAINTENANCE, func(data.DomainEvent) { delivered.Add(1) })
	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE})
	m.Unsubscribe(data.SYSTEM_MAINTENANCE, id)
	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE})

	if delivered.Load() != 1 {
		t.Fatalf("delivered = %d, want 1", delivered.Load())
	}
}

func TestListenerPanicIsContained(t *testing.T) {
	var delivered atomic.Int32
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	defer m.Close()

	m.Subscribe(data.SYSTEM_MAINTENANCE, func(data.DomainEvent) { panic("bad listener") })
	m.Subscribe(data.SYSTEM_MAINTENANCE, func(data.DomainEvent) { delivered.Add(1) })

	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE})

	if delivered.Load() != 1 {
		t.Fatalf("healthy listener starved by panicking one, delivered = %d", delivered.Load())
	}
}

func TestLastEventKeepsOnlyLatest(t *testing.T) {
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	defer m.Close()

	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE, Payload: map[string]any{"message": "first"}})
	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE, Payload: map[string]any{"message": "second"}})

	evt, ok := m.LastEvent(data.SYSTEM_MAINTENANCE)
	if !ok || data.PayloadString(evt.Payload, "message") != "second" {
		t.Fatalf("LastEvent = %+v", evt)
	}
}

func TestInjectAfterCloseIsDropped(t *testing.T) {
	var delivered atomic.Int32
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	m.Subscribe(data.SYSTEM_MAINTENANCE, func(data.DomainEvent) { delivered.Add(1) })
	m.Close()
	m.Inject(data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE})
	if delivered.Load() != 0 {
		t.Fatal("closed manager dispatched an event")
	}
}

func TestBackoffIsClamped(t *testing.T) {
	m := NewManager(Options{
		URL:              "ws://unused.invalid/ws",
		ReconnectFloor:   100 * time.Millisecond,
		ReconnectCeiling: 400 * time.Millisecond,
	}, nil)
	defer m.Close()

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{40, 400 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := m.backoff(tc.attempt); got != tc.want {
			t.Errorf("backoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	var delivered atomic.Int32
	m := NewManager(testOptions("ws://unused.invalid/ws"), nil)
	defer m.Close()
	m.Subscribe(data.SYSTEM_MAINTENANCE, func(data.DomainEvent) { delivered.Add(1) })

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	m.handleFrame([]byte("not json"), gen)
	m.handleFrame([]byte(`{"data":{"x":1}}`), gen)

	// an unparseable payload still dispatches with an empty one
	raw, _ := json.Marshal(data.Frame{Event: data.SYSTEM_MAINTENANCE, Data: json.RawMessage(`"scalar"`)})
	m.handleFrame(raw, gen)

	if delivered.Load() != 1 {
		t.Fatalf("delivered = %d, want 1", delivered.Load())
	}
	evt, _ := m.LastEvent(data.SYSTEM_MAINTENANCE)
	if len(evt.Payload) != 0 {
		t.Fatalf("payload = %v, want empty", evt.Payload)
	}
	if evt.Timestamp == "" {
		t.Fatal("timestamp must be stamped when the payload has none")
	}
}
