// Package wsworker implements the gardener<->worker wire protocol over
// gorilla/websocket duplex connections: three command types (DoWork,
// ReceiveResult, ReceiveError), each acked with an empty reply, framed by
// WebSocket's own message framing (satisfying the "length-framed message
// units" requirement without a custom framer).
//
// Session read/write pumps and ping/pong keepalive are grounded on the
// now-removed internal/infrastructure/websocket/client.go; WorkerTransport's
// reconnect policy is new, using cenkalti/backoff/v4 (present in the
// retrieval pack via correlator-io-correlator) for exponential
// backoff-with-jitter (initial 1s, factor 2, cap 60s, jitter +-20%), which
// client.go never needed since its browser-side clients never redial.
package wsworker

// commandKind discriminates the three command types on the wire.
type commandKind string

const (
	kindDoWork        commandKind = "do_work"
	kindReceiveResult commandKind = "receive_result"
	kindReceiveError  commandKind = "receive_error"
	kindAck           commandKind = "ack"
)

// wireInput is one element of a DoWork/ReceiveResult/ReceiveError input list.
type wireInput struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Lineage string `json:"lineage"`
	Value   string `json:"value,omitempty"`
	Hash    string `json:"hash"`
}

// envelope is the single wire message shape; Kind selects which of the
// payload fields is populated. RequestID correlates a command with its ack.
type envelope struct {
	Kind      commandKind `json:"kind"`
	RequestID string      `json:"request_id"`

	Entity  string      `json:"entity,omitempty"`
	Name    string      `json:"name,omitempty"`
	Version string      `json:"version,omitempty"`
	Lineage string      `json:"lineage,omitempty"`
	Value   string      `json:"value,omitempty"`
	Error   string       `json:"error,omitempty"`
	Inputs  []wireInput `json:"inputs,omitempty"`
}
