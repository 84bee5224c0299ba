package wsworker

import (
	"context"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

// LocalWorker is the local computation side a WorkerTransport forwards
// incoming DoWork commands to: worker.Blocking or worker.Pooled satisfy this.
type LocalWorker interface {
	Receive(ctx context.Context, w gardenmodel.Work) error
}

// WorkerTransport is the worker-process side of the wire: it dials out to a
// gardener endpoint, presents itself as the local Work receiver, and
// forwards whatever the local Worker emits back over the wire as
// ReceiveResult/ReceiveError commands. On disconnect it redials using an
// exponential backoff policy (initial 1s, factor 2, cap 60s, jitter +-20%),
// resetting on every successful dial so a later disconnect doesn't inherit
// an already-escalated interval.
type WorkerTransport struct {
	endpoint string
	local    LocalWorker
	redial   backoff.BackOff

	session *Session
}

// NewWorkerTransport creates a WorkerTransport that will dial endpoint and
// forward received Work to local.
func NewWorkerTransport(endpoint string, local LocalWorker) *WorkerTransport {
	return &WorkerTransport{endpoint: endpoint, local: local, redial: backoffPolicy()}
}

// Run dials endpoint and serves until ctx is cancelled, reconnecting on
// every disconnect.
func (t *WorkerTransport) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := t.runOnce(ctx); err != nil {
			log.Warn().Err(err).Str("endpoint", t.endpoint).Msg("wsworker: worker session ended, reconnecting")
		}

		if err := t.waitBeforeRedial(ctx); err != nil {
			return err
		}
	}
}

func (t *WorkerTransport) waitBeforeRedial(ctx context.Context) error {
	d := t.redial.NextBackOff()
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffPolicy builds the reconnect schedule: initial 1s, factor 2, cap
// 60s, +-20% jitter, retried indefinitely.
func backoffPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.MaxInterval = 60 * time.Second
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0 // retry forever; the caller decides when to stop via ctx
	return b
}

func (t *WorkerTransport) runOnce(ctx context.Context) error {
	u, err := url.Parse(t.endpoint)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	// A successful dial proves the endpoint is reachable again; restart the
	// backoff schedule so the next disconnect doesn't inherit this one's
	// escalated interval.
	t.redial.Reset()

	t.session = NewSession(conn, t)
	defer t.session.Close()
	t.session.Run()
	return nil
}

// HandleDoWork forwards an inbound DoWork command to the local Worker.
func (t *WorkerTransport) HandleDoWork(ctx context.Context, e envelope) error {
	return t.local.Receive(ctx, envelopeToWork(e))
}

// HandleReceiveResult is never sent to a worker process; present only to
// satisfy Inbound.
func (t *WorkerTransport) HandleReceiveResult(_ context.Context, _ envelope) error { return nil }

// HandleReceiveError is never sent to a worker process; present only to
// satisfy Inbound.
func (t *WorkerTransport) HandleReceiveError(_ context.Context, _ envelope) error { return nil }

// EmitResult satisfies worker.Sink: it ships r back to the gardener as a
// ReceiveResult command and blocks for its ack.
func (t *WorkerTransport) EmitResult(ctx context.Context, r gardenmodel.Result) error {
	return t.session.Send(ctx, resultToEnvelope(r))
}

// EmitResultError satisfies worker.Sink: it ships e back to the gardener as
// a ReceiveError command and blocks for its ack.
func (t *WorkerTransport) EmitResultError(ctx context.Context, e gardenmodel.ResultError) error {
	return t.session.Send(ctx, resultErrorToEnvelope(e))
}
