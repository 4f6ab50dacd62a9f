package cipherlink

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cipherlink/client-go/internal/relay"
)

// dialTimeout bounds a single connection attempt to the relay.
const dialTimeout = 15 * time.Second

// eventBufferSize is the dispatch queue depth. A slow handler delays
// later events rather than dropping them.
const eventBufferSize = 64

// ConnState is the session connection state.
type ConnState int32

const (
	// StateDisconnected means no connection and no retry pending. After
	// an explicit Disconnect or an exhausted retry budget this is terminal.
	StateDisconnected ConnState = iota
	// StateConnecting means the first dial is in flight.
	StateConnecting
	// StateConnected means frames flow and the heartbeat is running.
	StateConnected
	// StateReconnecting means the connection dropped and a backoff
	// retry is pending or in flight.
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Session is a persistent connection to the relay carrying encrypted
// frames between peers. It owns its full lifecycle: connect, heartbeat,
// reconnect with capped backoff, offline queueing, and typed event
// dispatch. Multiple sessions (multi-account, tests) never share state.
//
// All frame handlers run on one dispatch goroutine.
type Session struct {
	cfg      *sessionConfig
	log      zerolog.Logger
	registry *handlerRegistry

	mu       sync.Mutex
	state    ConnState
	conn     relay.Conn
	dialURL  string
	identity string
	attempts int
	gen      int // connection generation; stale read loops are ignored
	queue    []*Frame
	closed   bool

	reconnectTimer *time.Timer
	heartbeatStop  chan struct{}

	writeMu sync.Mutex // one writer on the wire at a time

	events chan *Frame
	done   chan struct{}
}

// NewSession creates a session for the configured relay. The session is
// inert until Connect.
func NewSession(opts ...Option) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Session{
		cfg:      cfg,
		log:      cfg.logger,
		registry: newHandlerRegistry(),
		events:   make(chan *Frame, eventBufferSize),
		done:     make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

// Connect opens the relay connection as identity, authenticated by
// token. It never blocks on the network: the dial runs in the
// background, a FrameConnected frame is dispatched on success, and
// failures enter the reconnect path. Errors are returned only for local
// misuse (bad arguments, already connected, session closed).
func (s *Session) Connect(identity, token string) error {
	if identity == "" {
		return ErrMissingIdentity
	}
	if token == "" {
		return ErrMissingToken
	}

	u, err := url.Parse(s.cfg.relayURL)
	if err != nil {
		return fmt.Errorf("parse relay URL: %w", err)
	}
	q := u.Query()
	q.Set("username", identity)
	q.Set("token", token)
	u.RawQuery = q.Encode()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateDisconnected {
		return ErrAlreadyConnected
	}
	s.identity = identity
	s.dialURL = u.String()
	s.attempts = 0
	s.state = StateConnecting

	go s.dial()
	return nil
}

// Send transmits a frame immediately when connected; otherwise the frame
// joins an unbounded in-memory FIFO queue replayed on the next open. The
// queue does not survive a process crash, by design.
func (s *Session) Send(frame *Frame) error {
	if frame == nil {
		return ErrMalformedMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateConnected || s.conn == nil {
		s.queue = append(s.queue, frame)
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	s.mu.Unlock()

	if err := s.writeFrame(conn, frame); err != nil {
		// Keep the frame for replay; the read loop notices the failure
		// and drives reconnection.
		s.mu.Lock()
		if !s.closed {
			s.queue = append(s.queue, frame)
		}
		s.mu.Unlock()
	}
	return nil
}

// On registers a handler for frames of type t and returns its id.
func (s *Session) On(t FrameType, h Handler) HandlerID {
	return s.registry.on(t, h)
}

// Off removes a previously registered handler.
func (s *Session) Off(t FrameType, id HandlerID) {
	s.registry.off(t, id)
}

// Emit queues a frame for dispatch to local handlers, the same path
// inbound frames take. Frames emitted after Disconnect are dropped.
func (s *Session) Emit(frame *Frame) {
	select {
	case s.events <- frame:
	case <-s.done:
	}
}

// State returns the current connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QueueLen reports how many frames await replay.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// ReconnectNow skips the pending backoff wait and dials immediately.
// Call it on foreground transitions so a suspended client does not sit
// out the remainder of a long backoff delay. No-op unless reconnecting.
func (s *Session) ReconnectNow() {
	s.mu.Lock()
	if s.closed || s.state != StateReconnecting || s.reconnectTimer == nil {
		s.mu.Unlock()
		return
	}
	if !s.reconnectTimer.Stop() {
		// Timer already fired; the scheduled dial is on its way.
		s.mu.Unlock()
		return
	}
	s.reconnectTimer = nil
	s.mu.Unlock()

	s.log.Debug().Msg("foreground transition, reconnecting eagerly")
	go s.dial()
}

// Disconnect closes the session for good: it suppresses reconnection,
// cancels the heartbeat and any pending backoff timer, clears the queue
// and the handler registry, and tears down the connection. Idempotent;
// repeated calls are no-ops.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateDisconnected
	s.gen++
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.heartbeatStop != nil {
		close(s.heartbeatStop)
		s.heartbeatStop = nil
	}
	conn := s.conn
	s.conn = nil
	s.queue = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.registry.clear()
	close(s.done)
}

// dispatchLoop delivers frames to handlers one at a time, in order.
func (s *Session) dispatchLoop() {
	for {
		select {
		case f := <-s.events:
			s.registry.dispatch(f, s.log)
		case <-s.done:
			return
		}
	}
}

// dial attempts one connection to the relay. Failures feed the backoff
// schedule; success transitions to connected.
func (s *Session) dial() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	dialURL := s.dialURL
	dialer := s.cfg.dialer
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, dialURL, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("relay dial failed")
		s.scheduleReconnect(err)
		return
	}
	s.handleConnected(conn)
}

// handleConnected installs a fresh connection: reset the attempt
// counter, replay the queue in FIFO order, start the heartbeat and the
// read loop, and announce the open locally.
func (s *Session) handleConnected(conn relay.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.state = StateConnected
	s.attempts = 0
	s.gen++
	gen := s.gen
	identity := s.identity
	pending := s.queue
	s.queue = nil
	hbStop := make(chan struct{})
	s.heartbeatStop = hbStop
	s.mu.Unlock()

	s.log.Info().Int("queued", len(pending)).Msg("relay connection open")

	for i, f := range pending {
		if err := s.writeFrame(conn, f); err != nil {
			s.log.Warn().Err(err).Msg("queue flush interrupted")
			s.mu.Lock()
			if !s.closed {
				s.queue = append(pending[i:], s.queue...)
			}
			s.mu.Unlock()
			break
		}
	}

	go s.heartbeatLoop(conn, hbStop)
	go s.readLoop(conn, gen)

	if f, err := NewFrame(FrameConnected, PresencePayload{Username: identity, IsOnline: true}); err == nil {
		s.Emit(f)
	}
}

// readLoop receives frames until the connection fails. Heartbeat pongs
// are consumed here and never reach handlers.
func (s *Session) readLoop(conn relay.Conn, gen int) {
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			s.handleConnectionLost(conn, gen, err)
			return
		}
		if frame.Type == FramePong {
			continue
		}
		s.Emit(&frame)
	}
}

// handleConnectionLost reacts to an unexpected close: stop the
// heartbeat, drop the connection, and enter the backoff schedule.
func (s *Session) handleConnectionLost(conn relay.Conn, gen int, cause error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		// Explicit disconnect, or a newer connection already took over.
		s.mu.Unlock()
		return
	}
	if s.heartbeatStop != nil {
		close(s.heartbeatStop)
		s.heartbeatStop = nil
	}
	s.conn = nil
	s.state = StateReconnecting
	s.mu.Unlock()

	conn.Close()
	if relay.IsUnexpectedClose(cause) {
		s.log.Warn().Err(cause).Msg("relay connection lost")
	}
	s.scheduleReconnect(cause)
}

// scheduleReconnect arms the next backoff-delayed dial, or reports the
// terminal connectivity failure once the attempt budget is spent.
func (s *Session) scheduleReconnect(cause error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cfg.backoff.Exhausted(s.attempts) {
		attempts := s.attempts
		s.state = StateDisconnected
		s.mu.Unlock()

		err := &ConnectivityError{Attempts: attempts, Err: cause}
		s.log.Error().Err(err).Msg("reconnection budget exhausted")
		if f, ferr := NewFrame(FrameError, ErrorPayload{Message: err.Error(), Terminal: true}); ferr == nil {
			s.Emit(f)
		}
		return
	}

	delay := s.cfg.backoff.Delay(s.attempts)
	s.attempts++
	attempt := s.attempts
	s.state = StateReconnecting
	s.reconnectTimer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.closed || s.state != StateReconnecting {
			s.mu.Unlock()
			return
		}
		s.reconnectTimer = nil
		s.mu.Unlock()
		s.dial()
	})
	s.mu.Unlock()

	s.log.Info().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("reconnect scheduled")
}

// heartbeatLoop pings the relay at a fixed interval for as long as the
// connection it was started for stays current.
func (s *Session) heartbeatLoop(conn relay.Conn, stop chan struct{}) {
	ticker := time.NewTicker(s.cfg.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ping, err := NewFrame(FramePing, nil)
			if err != nil {
				return
			}
			if err := s.writeFrame(conn, ping); err != nil {
				// The read loop sees the same failure and reconnects.
				return
			}
		}
	}
}

func (s *Session) writeFrame(conn relay.Conn, frame *Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(frame)
}
