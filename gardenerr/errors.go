// Package gardenerr holds the named error kinds raised across the gardener:
// dispatch failures, storage failures, and worker-reported computation
// failures. Each wraps an underlying cause where one exists.
//
// Grounded on the now-removed internal/domain/errors/errors.go's struct-per-kind-plus-Unwrap
// idiom (ExecutionError/StateError/ConfigurationError), carried over directly
// rather than collapsed into a single sentinel-error scheme, since the
// teacher's style threads contextual fields (which path, which worker)
// through the error value instead of through wrapped fmt.Errorf chains.
package gardenerr

import "fmt"

// NoWorkerAvailable is raised when a Work item is dispatched while no worker
// session is connected; the dispatch fails rather than waiting.
type NoWorkerAvailable struct {
	Name    string
	Version string
}

func (e *NoWorkerAvailable) Error() string {
	return fmt.Sprintf("gardener: no worker available for %s/%s", e.Name, e.Version)
}

// NothingToOffer is raised by a Source when none of the message variants a
// Receiver handles is one the Source emits.
type NothingToOffer struct {
	Topic string
}

func (e *NothingToOffer) Error() string {
	return fmt.Sprintf("bus: nothing to offer for topic %q", e.Topic)
}

// StoreError wraps a failure from the underlying data store.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// WorkerFunctionError wraps the textual error message a worker reported
// after failing to compute a Work item. It never carries a Go error cause:
// the failure happened in a remote process and crossed the wire as text.
type WorkerFunctionError struct {
	Name    string
	Version string
	Message string
}

func (e *WorkerFunctionError) Error() string {
	return fmt.Sprintf("worker function %s/%s failed: %s", e.Name, e.Version, e.Message)
}

// TransportError wraps a failure in the worker<->gardener wire connection.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }
