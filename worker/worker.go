// Package worker implements the function side of the gardener: a registry of
// (name, version) -> Func, and two ways to run a dispatched Work item against
// it. Blocking runs synchronously on the calling goroutine; Pooled runs on a
// fixed-size goroutine pool, grounded on the bounded channel-based pool
// idiom seen in the retrieval pack's standalone workerpool.Pool (fixed
// `workers` goroutines draining one input channel, a WaitGroup closing the
// output on drain) adapted here from a transform pipeline to a fire-and-emit
// dispatch sink.
//
// The function registry itself is grounded on the now-removed
// internal/node/registry.go, whose sync.RWMutex-guarded map keyed by
// identifier carries over unchanged; only the key shape (name+version
// instead of a single node id) and the registered value (a Func instead of
// a Node constructor) differ.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

// Func is a user-registered computation: it receives the ordered input
// values of a Work item and returns the computed value, or an error.
type Func func(args ...string) (string, error)

// Sink receives the Result/ResultError a Worker emits after running a Func.
type Sink interface {
	EmitResult(ctx context.Context, r gardenmodel.Result) error
	EmitResultError(ctx context.Context, e gardenmodel.ResultError) error
}

type funcKey struct {
	name    string
	version string
}

// registry is the (name, version) -> Func map shared by Blocking and Pooled.
type registry struct {
	mu        sync.RWMutex
	functions map[funcKey]Func
}

func newRegistry() *registry {
	return &registry{functions: make(map[funcKey]Func)}
}

// RegisterFunction installs fn under (name, version), replacing any prior
// registration for that key.
func (r *registry) RegisterFunction(name, version string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[funcKey{name, version}] = fn
}

func (r *registry) lookup(name, version string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[funcKey{name, version}]
	return fn, ok
}

// run executes fn against w and returns the Result/ResultError message to
// emit. A missing registration is a fatal programmer error: it is logged and
// nothing is emitted, since emitting anything here risks looping the
// dispatch that caused it.
func run(fn Func, ok bool, w gardenmodel.Work) (gardenmodel.Result, gardenmodel.ResultError, bool, bool) {
	if !ok {
		log.Error().Str("name", w.Name()).Str("version", w.Version()).
			Msg("worker: no function registered, dropping work")
		return gardenmodel.Result{}, gardenmodel.ResultError{}, false, false
	}

	v, err := fn(w.Args()...)
	if err != nil {
		return gardenmodel.Result{}, w.ToResultError(err.Error()), false, true
	}
	return w.ToResult(v), gardenmodel.ResultError{}, true, true
}

// Blocking runs every Work item synchronously on the caller's goroutine.
// Intended for tests and trivially-fast functions.
type Blocking struct {
	*registry
	sink Sink
}

// NewBlocking creates a Blocking worker that emits through sink.
func NewBlocking(sink Sink) *Blocking {
	return &Blocking{registry: newRegistry(), sink: sink}
}

// Receive runs w's registered function and emits its outcome before
// returning.
func (b *Blocking) Receive(ctx context.Context, w gardenmodel.Work) error {
	fn, ok := b.lookup(w.Name(), w.Version())
	result, resultErr, isResult, emit := run(fn, ok, w)
	if !emit {
		return nil
	}
	if isResult {
		return b.sink.EmitResult(ctx, result)
	}
	return b.sink.EmitResultError(ctx, resultErr)
}

// Pooled runs each Work item on a fixed-size goroutine pool. The registered
// functions are assumed thread-safe, or the pool should be sized 1.
type Pooled struct {
	*registry
	sink Sink
	jobs chan gardenmodel.Work
	wg   sync.WaitGroup
}

// NewPooled creates a Pooled worker with size goroutines draining its
// internal job queue. Call Close to drain and stop the pool.
func NewPooled(sink Sink, size int) *Pooled {
	if size < 1 {
		size = 1
	}
	p := &Pooled{
		registry: newRegistry(),
		sink:     sink,
		jobs:     make(chan gardenmodel.Work, size),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.loop()
	}
	return p
}

func (p *Pooled) loop() {
	defer p.wg.Done()
	for w := range p.jobs {
		fn, ok := p.lookup(w.Name(), w.Version())
		result, resultErr, isResult, emit := run(fn, ok, w)
		if !emit {
			continue
		}
		ctx := context.Background()
		var err error
		if isResult {
			err = p.sink.EmitResult(ctx, result)
		} else {
			err = p.sink.EmitResultError(ctx, resultErr)
		}
		if err != nil {
			log.Error().Err(err).Msg("worker: emit failed")
		}
	}
}

// Receive enqueues w for execution by the pool. It returns once the item is
// queued, not once it has run; the pool emits asynchronously.
func (p *Pooled) Receive(ctx context.Context, w gardenmodel.Work) error {
	select {
	case p.jobs <- w:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker: enqueue cancelled: %w", ctx.Err())
	}
}

// Close stops accepting new work and waits for in-flight jobs to finish.
func (p *Pooled) Close() {
	close(p.jobs)
	p.wg.Wait()
}
