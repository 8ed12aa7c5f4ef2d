// Package connection owns the live channel to the backend event source: at
// most one websocket connection, scoped to the current session. Inbound
// frames are decoded into domain events, recorded as per-type "last event"
// signals and fanned out to subscribed listeners on the read goroutine, so
// events of one connection are always handled in delivery order.
package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"eon-notify/config"
	"eon-notify/data"
	"eon-notify/logger"
	"eon-notify/toast"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("event channel not connected")

// CloseUnauthorized is the application close code the backend uses when the
// bearer token is rejected mid-session.
const CloseUnauthorized = 4401

// Options are the transport policy parameters. Reconnection backoff is
// capped exponential: floor 1s, ceiling 5s by default.
type Options struct {
	URL                  string
	MaxReconnectAttempts int
	ReconnectFloor       time.Duration
	ReconnectCeiling     time.Duration
	PingInterval         time.Duration
	PongWait             time.Duration
}

// OptionsFromConfig maps the environment configuration onto transport
// options, filling in the keepalive defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:                  cfg.EventChannelURL,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		ReconnectFloor:       time.Duration(cfg.ReconnectFloorMs) * time.Millisecond,
		ReconnectCeiling:     time.Duration(cfg.ReconnectCeilingMs) * time.Millisecond,
		PingInterval:         30 * time.Second,
		PongWait:             60 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = 5
	}
	if o.ReconnectFloor <= 0 {
		o.ReconnectFloor = time.Second
	}
	if o.ReconnectCeiling < o.ReconnectFloor {
		o.ReconnectCeiling = 5 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	return o
}

type subscriberId int

// Manager maintains the singleton connection for the current session.
// Concurrent Connect calls while connected are idempotent no-ops, and
// Disconnect synchronously stops further event dispatch: frames still in
// flight carry a stale generation and are dropped.
type Manager struct {
	opts    Options
	dialer  *websocket.Dialer
	toaster toast.Toaster

	mu         sync.Mutex
	writeMu    sync.Mutex
	conn       *websocket.Conn
	session    *data.Session
	status     data.ConnectionStatus
	gen        int
	running    bool
	closed     bool
	lastEvents map[string]data.DomainEvent
	subs       map[string]map[subscriberId]func(data.DomainEvent)
	nextSub    subscriberId
}

// NewManager returns a Manager using the given transport options. The
// toaster receives the generic, role-agnostic UX reactions (connection-lost
// advisory, own-profile photo change); it may be nil.
func NewManager(opts Options, toaster toast.Toaster) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opts:       opts,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		toaster:    toaster,
		status:     data.ConnectionStatus{MaxReconnectAttempts: opts.MaxReconnectAttempts},
		lastEvents: map[string]data.DomainEvent{},
		subs:       map[string]map[subscriberId]func(data.DomainEvent){},
	}
}

// Connect opens the channel for the given session. Fire-and-forget: success
// or failure surfaces through Status, never through a blocking return. No-op
// when the session is invalid or a connection is already live.
func (m *Manager) Connect(session data.Session) {
	if !session.Valid() {
		logger.Log.Warn(logger.LogPayload{
			Component: "Connection Manager",
			Operation: "Connect",
			Message:   "No valid session, skipping connect",
			UserId:    session.UserID,
		})
		return
	}

	m.mu.Lock()
	if m.closed || m.running || m.status.IsConnected {
		m.mu.Unlock()
		logger.Log.Debug(logger.LogPayload{
			Component: "Connection Manager",
			Operation: "Connect",
			Message:   "Already connected or connecting, ignoring",
			UserId:    session.UserID,
		})
		return
	}
	m.session = &session
	m.running = true
	m.status.ReconnectAttempts = 0
	m.status.MaxReconnectAttempts = m.opts.MaxReconnectAttempts
	gen := m.gen
	m.mu.Unlock()

	go m.run(session, gen)
}

// Disconnect tears the channel down and clears all last-event slots so a
// later reconnect starts from fresh signal state.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.gen++
	m.running = false
	m.session = nil
	conn := m.conn
	m.conn = nil
	if m.status.IsConnected {
		now := time.Now()
		m.status.IsConnected = false
		m.status.LastDisconnectedAt = &now
	}
	m.lastEvents = map[string]data.DomainEvent{}
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	logger.Log.Info(logger.LogPayload{
		Component: "Connection Manager",
		Operation: "Disconnect",
		Message:   "Event channel disconnected",
	})
}

// Close shuts the manager down permanently. Used on application exit.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Disconnect()
}

// Status returns a snapshot of the connection health. Consumers observe
// this value instead of receiving thrown errors.
func (m *Manager) Status() data.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// LastEvent returns the most recent event of the given type received on the
// current connection. Overwrite semantics: only the latest instance per
// type is retained; full history is the notification store's job.
func (m *Manager) LastEvent(eventType string) (data.DomainEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evt, ok := m.lastEvents[eventType]
	return evt, ok
}

// Subscribe registers a listener for one event type and returns a handle
// for Unsubscribe. Listeners run on the dispatch goroutine and must not
// block.
func (m *Manager) Subscribe(eventType string, fn func(data.DomainEvent)) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	id := m.nextSub
	if m.subs[eventType] == nil {
		m.subs[eventType] = map[subscriberId]func(data.DomainEvent){}
	}
	m.subs[eventType][id] = fn
	return int(id)
}

func (m *Manager) Unsubscribe(eventType string, id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs[eventType], subscriberId(id))
}

// Ping is a best-effort liveness probe; no-op when disconnected.
func (m *Manager) Ping() {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}
	m.writeMu.Lock()
	_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
	m.writeMu.Unlock()
}

// Emit sends a client event to the backend, e.g. a re-emit request from an
// immediate-resource hook. Returns ErrNotConnected when the channel is down.
func (m *Manager) Emit(event string, payload any) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = encoded
	}
	frame, err := json.Marshal(data.Frame{Event: event, Data: raw})
	if err != nil {
		return err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// Inject feeds an externally sourced event (Event Hub consumer, tests) into
// the same dispatch path the websocket uses. Dispatch is synchronous so
// per-source ordering is preserved. Dropped once the manager is closed.
func (m *Manager) Inject(evt data.DomainEvent) {
	m.mu.Lock()
	gen := m.gen
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().Format(time.RFC3339)
	}
	m.dispatch(evt, gen)
}

// run drives the dial/read/reconnect cycle for one Connect call. gen pins
// the loop to the session generation it was started for; any Disconnect
// bumps the generation and the loop winds down.
func (m *Manager) run(session data.Session, gen int) {
	attempts := 0
	for {
		if m.stopped(gen) {
			return
		}

		header := http.Header{}
		header.Set("Authorization", "Bearer "+session.AuthToken)
		conn, resp, err := m.dialer.Dial(m.opts.URL, header)
		if err != nil {
			if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
				logger.Log.Error(logger.LogPayload{
					Component: "Connection Manager",
					Operation: "Dial",
					Message:   "Session token rejected by event channel, not retrying",
					Error:     err,
					UserId:    session.UserID,
				})
				m.giveUp(gen, true)
				return
			}

			attempts++
			m.recordAttempt(gen, attempts)
			logger.Log.Warn(logger.LogPayload{
				Component: "Connection Manager",
				Operation: "Dial",
				Message:   fmt.Sprintf("Connect attempt %d/%d failed", attempts, m.opts.MaxReconnectAttempts),
				Error:     err,
				UserId:    session.UserID,
			})
			if attempts >= m.opts.MaxReconnectAttempts {
				logger.Log.Error(logger.LogPayload{
					Component: "Connection Manager",
					Operation: "Dial",
					Message:   "Reconnect attempts exhausted, giving up",
					UserId:    session.UserID,
				})
				if m.toaster != nil {
					m.toaster.Show(toast.Toast{
						Title:       "Connection lost",
						Description: "Real-time updates are unavailable. Please reload the application.",
						Duration:    toast.DurationFor(data.PRIORITY_URGENT),
						Important:   true,
					})
				}
				m.giveUp(gen, false)
				return
			}
			time.Sleep(m.backoff(attempts))
			continue
		}

		if !m.adopt(conn, gen) {
			_ = conn.Close()
			return
		}
		attempts = 0
		m.joinRoom(session)

		logger.Log.Info(logger.LogPayload{
			Component: "Connection Manager",
			Operation: "Connect",
			Message:   "Event channel connected for userId: " + session.UserID,
			UserId:    session.UserID,
		})

		stopPing := make(chan struct{})
		go m.keepalive(conn, stopPing)
		readErr := m.readLoop(conn, gen)
		close(stopPing)

		if m.stopped(gen) {
			return
		}
		if isAuthClose(readErr) {
			logger.Log.Error(logger.LogPayload{
				Component: "Connection Manager",
				Operation: "ReadLoop",
				Message:   "Channel closed the session as unauthorized, not retrying",
				Error:     readErr,
				UserId:    session.UserID,
			})
			m.giveUp(gen, true)
			return
		}

		logger.Log.Warn(logger.LogPayload{
			Component: "Connection Manager",
			Operation: "ReadLoop",
			Message:   "Event channel dropped, reconnecting",
			Error:     readErr,
			UserId:    session.UserID,
		})
		m.markDropped(gen)
	}
}

// adopt installs a freshly dialed connection, unless the session generation
// moved on while dialing.
func (m *Manager) adopt(conn *websocket.Conn, gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen || !m.running {
		return false
	}
	m.conn = conn
	now := time.Now()
	m.status.IsConnected = true
	m.status.LastConnectedAt = &now
	m.status.ReconnectAttempts = 0

	_ = conn.SetReadDeadline(time.Now().Add(m.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(m.opts.PongWait))
	})
	return true
}

// markDropped records an unplanned disconnect and clears the last-event
// slots so the next connection starts from fresh signal state (no replay).
func (m *Manager) markDropped(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.conn = nil
	if m.status.IsConnected {
		now := time.Now()
		m.status.IsConnected = false
		m.status.LastDisconnectedAt = &now
	}
	m.lastEvents = map[string]data.DomainEvent{}
}

func (m *Manager) giveUp(gen int, clearSession bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.running = false
	m.conn = nil
	if clearSession {
		m.session = nil
	}
	if m.status.IsConnected {
		now := time.Now()
		m.status.IsConnected = false
		m.status.LastDisconnectedAt = &now
	}
}

func (m *Manager) recordAttempt(gen, attempts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.gen {
		m.status.ReconnectAttempts = attempts
	}
}

func (m *Manager) stopped(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed || gen != m.gen || !m.running
}

// backoff grows exponentially from the floor and is clamped at the ceiling.
func (m *Manager) backoff(attempts int) time.Duration {
	delay := m.opts.ReconnectFloor << (attempts - 1)
	if delay > m.opts.ReconnectCeiling || delay <= 0 {
		delay = m.opts.ReconnectCeiling
	}
	return delay
}

// joinRoom subscribes the connection to the per-user logical room so the
// backend only delivers events relevant to this identity.
func (m *Manager) joinRoom(session data.Session) {
	if err := m.Emit(data.JOIN_ROOM, map[string]string{"userId": session.UserID}); err != nil {
		logger.Log.Warn(logger.LogPayload{
			Component: "Connection Manager",
			Operation: "JoinRoom",
			Message:   "Failed to join user room for userId: " + session.UserID,
			Error:     err,
			UserId:    session.UserID,
		})
	}
}

func (m *Manager) keepalive(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(m.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			m.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (m *Manager) readLoop(conn *websocket.Conn, gen int) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		m.handleFrame(raw, gen)
	}
}

func (m *Manager) handleFrame(raw []byte, gen int) {
	var frame data.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Connection Manager",
			Operation: "HandleFrame",
			Message:   "Invalid frame format, dropping",
			Error:     err,
		})
		return
	}
	if frame.Event == "" {
		return
	}

	payload := map[string]any{}
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			logger.Log.Warn(logger.LogPayload{
				Component: "Connection Manager",
				Operation: "HandleFrame",
				Message:   "Unparseable payload for event, continuing with empty payload",
				Error:     err,
				EventType: frame.Event,
			})
			payload = map[string]any{}
		}
	}

	timestamp := data.PayloadString(payload, "timestamp")
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}

	m.dispatch(data.DomainEvent{
		EventType: frame.Event,
		Payload:   payload,
		Timestamp: timestamp,
	}, gen)
}

// dispatch records the last-event signal and invokes subscribers. Events
// whose generation is stale (disconnected or re-connected since the frame
// entered the transport) are dropped before any side effect.
func (m *Manager) dispatch(evt data.DomainEvent, gen int) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.lastEvents[evt.EventType] = evt

	fns := make([]func(data.DomainEvent), 0, len(m.subs[evt.EventType]))
	for _, fn := range m.subs[evt.EventType] {
		fns = append(fns, fn)
	}

	ownPhoto := false
	if evt.EventType == data.USER_PHOTO_UPDATED && m.session != nil &&
		data.PayloadString(evt.Payload, "userId") == m.session.UserID {
		ownPhoto = true
	}
	m.mu.Unlock()

	if ownPhoto && m.toaster != nil {
		m.toaster.Show(toast.Toast{
			Title:       "Profile photo updated",
			Description: "Your profile photo has been refreshed.",
			Duration:    toast.DurationFor(data.PRIORITY_LOW),
		})
	}

	for _, fn := range fns {
		m.invoke(fn, evt)
	}
}

// invoke shields the dispatch path from a misbehaving listener; handler
// panics are contained and logged, never surfaced to the transport.
func (m *Manager) invoke(fn func(data.DomainEvent), evt data.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error(logger.LogPayload{
				Component: "Connection Manager",
				Operation: "Dispatch",
				Message:   fmt.Sprintf("Listener panic contained: %v", r),
				EventType: evt.EventType,
			})
		}
	}()
	fn(evt)
}

func isAuthClose(err error) bool {
	return websocket.IsCloseError(err, websocket.ClosePolicyViolation, CloseUnauthorized)
}
