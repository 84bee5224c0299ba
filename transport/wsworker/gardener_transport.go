package wsworker

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/gardenerr"
	"github.com/smilemakc/gardenflow/gardenmodel"
	"github.com/smilemakc/gardenflow/roundrobin"
)

// ResultSink receives the Result/ResultError a worker session forwards back
// to the gardener; the Gardener composition type implements it.
type ResultSink interface {
	EmitResult(ctx context.Context, r gardenmodel.Result) error
	EmitResultError(ctx context.Context, e gardenmodel.ResultError) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GardenerTransport is the gardener-process side of the wire: an
// http.Handler that upgrades incoming connections to worker sessions, holds
// them in a RoundRobin pool, and dispatches Work to whichever session is
// next in rotation. Forwards every ReceiveResult/ReceiveError it receives to
// sink.
//
// Grounded on the now-removed internal/infrastructure/websocket/hub.go's
// register/unregister/client-set bookkeeping, replacing the by-user/workflow/
// execution subscription indexes (meaningless here — every worker is
// equivalent) with roundrobin.Selector's fairness guarantee.
type GardenerTransport struct {
	sink ResultSink

	selector *roundrobin.Selector[*Session]
}

// NewGardenerTransport creates a GardenerTransport that forwards results to
// sink.
func NewGardenerTransport(sink ResultSink) *GardenerTransport {
	return &GardenerTransport{
		sink:     sink,
		selector: roundrobin.New[*Session](),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and runs the
// resulting session until the worker disconnects, at which point the
// session is removed from rotation.
func (t *GardenerTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("wsworker: upgrade failed")
		return
	}

	session := NewSession(conn, t)
	t.selector.Add(session)
	log.Info().Int("workers", t.selector.Len()).Msg("wsworker: worker session attached")

	session.Run()

	t.selector.Remove(session)
	log.Info().Int("workers", t.selector.Len()).Msg("wsworker: worker session detached")
}

// Dispatch forwards w to the next session in rotation and waits for its ack.
// Fails with *gardenerr.NoWorkerAvailable if no session is connected.
func (t *GardenerTransport) Dispatch(ctx context.Context, w gardenmodel.Work) error {
	session, ok := t.selector.Next()
	if !ok {
		return &gardenerr.NoWorkerAvailable{Name: w.Name(), Version: w.Version()}
	}
	return session.Send(ctx, workToEnvelope(w))
}

// HandleDoWork is never sent to the gardener; present only to satisfy
// Inbound.
func (t *GardenerTransport) HandleDoWork(_ context.Context, _ envelope) error { return nil }

// HandleReceiveResult forwards a worker's successful completion to sink.
func (t *GardenerTransport) HandleReceiveResult(ctx context.Context, e envelope) error {
	return t.sink.EmitResult(ctx, envelopeToResult(e))
}

// HandleReceiveError forwards a worker's failed completion to sink.
func (t *GardenerTransport) HandleReceiveError(ctx context.Context, e envelope) error {
	return t.sink.EmitResultError(ctx, envelopeToResultError(e))
}
