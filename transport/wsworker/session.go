package wsworker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/gardenerr"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// Inbound is implemented by whichever side wants to react to commands
// arriving on a Session: GardenerTransport handles ReceiveResult/
// ReceiveError, WorkerTransport handles DoWork.
type Inbound interface {
	HandleDoWork(ctx context.Context, e envelope) error
	HandleReceiveResult(ctx context.Context, e envelope) error
	HandleReceiveError(ctx context.Context, e envelope) error
}

// Session is one duplex connection between a gardener and a worker process.
// Either side can originate a command and await its ack; either side can
// receive one and must reply.
type Session struct {
	conn    *websocket.Conn
	inbound Inbound

	mu      sync.Mutex
	pending map[string]chan envelope

	closeOnce sync.Once
	closed    chan struct{}
}

// NewSession wraps conn, dispatching inbound commands to inbound. Call Run
// in a goroutine to start its read/write pumps.
func NewSession(conn *websocket.Conn, inbound Inbound) *Session {
	return &Session{
		conn:    conn,
		inbound: inbound,
		pending: make(map[string]chan envelope),
		closed:  make(chan struct{}),
	}
}

// Run drives the session's read pump until the connection closes. Intended
// to be called in its own goroutine; returns when the session is done.
func (s *Session) Run() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go s.keepAlive()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var e envelope
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Warn().Err(err).Msg("wsworker: malformed message, dropping")
			continue
		}
		if e.Kind == kindAck {
			s.dispatch(e)
			continue
		}
		// Commands run off the read loop: a handler that itself Sends and
		// waits for an ack needs this loop free to read that ack.
		go s.dispatch(e)
	}
}

func (s *Session) keepAlive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			if err := s.writeRaw(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) dispatch(e envelope) {
	if e.Kind == kindAck {
		s.mu.Lock()
		ch, ok := s.pending[e.RequestID]
		if ok {
			delete(s.pending, e.RequestID)
		}
		s.mu.Unlock()
		if ok {
			ch <- e
		}
		return
	}

	ctx := context.Background()
	var err error
	switch e.Kind {
	case kindDoWork:
		err = s.inbound.HandleDoWork(ctx, e)
	case kindReceiveResult:
		err = s.inbound.HandleReceiveResult(ctx, e)
	case kindReceiveError:
		err = s.inbound.HandleReceiveError(ctx, e)
	default:
		log.Warn().Str("kind", string(e.Kind)).Msg("wsworker: unknown command kind")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("kind", string(e.Kind)).Msg("wsworker: inbound handler failed")
		return
	}
	s.sendEnvelope(envelope{Kind: kindAck, RequestID: e.RequestID})
}

// Send delivers e and blocks until the peer acks it or ctx is done. A failed
// ack (the peer never replies before ctx expires) means "not received;
// retry" per the wire contract.
func (s *Session) Send(ctx context.Context, e envelope) error {
	if e.RequestID == "" {
		e.RequestID = uuid.NewString()
	}

	ch := make(chan envelope, 1)
	s.mu.Lock()
	s.pending[e.RequestID] = ch
	s.mu.Unlock()

	if err := s.sendEnvelope(e); err != nil {
		s.mu.Lock()
		delete(s.pending, e.RequestID)
		s.mu.Unlock()
		return &gardenerr.TransportError{Op: "send", Cause: err}
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.pending, e.RequestID)
		s.mu.Unlock()
		return &gardenerr.TransportError{Op: "send", Cause: ctx.Err()}
	case <-s.closed:
		return &gardenerr.TransportError{Op: "send", Cause: fmt.Errorf("session closed")}
	}
}

func (s *Session) sendEnvelope(e envelope) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.writeRaw(websocket.TextMessage, raw)
}

func (s *Session) writeRaw(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Close tears down the underlying connection. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}
