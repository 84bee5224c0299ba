// Package bus implements the typed pub/sub backbone the gardener is wired
// from: a Source advertises the message variants it can emit, a Receiver
// exposes a handler per variant it wants, and Subscribe connects only the
// overlap.
//
// The original system this is modelled on drives dispatch off introspected
// interfaces and a runtime adapter registry; REDESIGN FLAGS calls for
// replacing that with a closed sum type over the message variants plus a
// plain handler table per Source, which is what Msg/Source implement here.
// The register/notify-all fan-out shape is grounded on the now-removed
// internal/infrastructure/monitoring observer, whose ExecutionObserver
// pattern (register a handler, notify every registered handler on an event)
// carries over unchanged even though its Node-shaped event types do not.
// Emit's per-handler panic recovery is grounded on the same observer
// revision's ObserverManager.notifyObserver, which recovers and logs rather
// than letting one observer's panic take down the rest.
package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/smilemakc/gardenflow/gardenerr"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

// Type identifies one variant of the closed message sum type.
type Type string

const (
	TypeInput       Type = "Input"
	TypeData        Type = "Data"
	TypeWork        Type = "Work"
	TypeResult      Type = "Result"
	TypeResultError Type = "ResultError"
)

// Msg is the closed sum type carried over the bus. Every constructor below
// builds a Msg carrying exactly one variant; a conversion stage
// (ToDataConverter) emits a new Msg for the converted value rather than
// re-labelling the one it received, and Emit never converts one variant
// into another.
type Msg struct {
	types       []Type
	input       *gardenmodel.Input
	data        *gardenmodel.Data
	work        *gardenmodel.Work
	result      *gardenmodel.Result
	resultError *gardenmodel.ResultError
}

func InputMsg(v gardenmodel.Input) Msg       { return Msg{types: []Type{TypeInput}, input: &v} }
func DataMsg(v gardenmodel.Data) Msg         { return Msg{types: []Type{TypeData}, data: &v} }
func WorkMsg(v gardenmodel.Work) Msg         { return Msg{types: []Type{TypeWork}, work: &v} }
func ResultMsg(v gardenmodel.Result) Msg     { return Msg{types: []Type{TypeResult}, result: &v} }
func ResultErrorMsg(v gardenmodel.ResultError) Msg {
	return Msg{types: []Type{TypeResultError}, resultError: &v}
}

// Types reports every variant this Msg provides.
func (m Msg) Types() []Type { return m.types }

func (m Msg) Input() (gardenmodel.Input, bool) {
	if m.input == nil {
		return gardenmodel.Input{}, false
	}
	return *m.input, true
}

func (m Msg) Data() (gardenmodel.Data, bool) {
	if m.data == nil {
		return gardenmodel.Data{}, false
	}
	return *m.data, true
}

func (m Msg) Work() (gardenmodel.Work, bool) {
	if m.work == nil {
		return gardenmodel.Work{}, false
	}
	return *m.work, true
}

func (m Msg) Result() (gardenmodel.Result, bool) {
	if m.result == nil {
		return gardenmodel.Result{}, false
	}
	return *m.result, true
}

func (m Msg) ResultError() (gardenmodel.ResultError, bool) {
	if m.resultError == nil {
		return gardenmodel.ResultError{}, false
	}
	return *m.resultError, true
}

// Handler processes one Msg delivered for a Type it registered for.
type Handler func(ctx context.Context, msg Msg) error

// Receiver exposes the handler table Subscribe matches against a Source's
// advertised types.
type Receiver interface {
	ReceiverMapping() map[Type]Handler
}

// Source advertises a fixed set of Types at construction and fans Emit out
// to every handler registered for each type a Msg provides.
type Source struct {
	mu       sync.RWMutex
	provides map[Type]bool
	handlers map[Type][]Handler
}

// NewSource creates a Source that will only ever emit messages of the given
// types; emitting any other type is a programmer error.
func NewSource(types ...Type) *Source {
	provides := make(map[Type]bool, len(types))
	for _, t := range types {
		provides[t] = true
	}
	return &Source{
		provides: provides,
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe connects receiver to every type both the Source advertises and
// the Receiver's mapping names, returning that overlap. Fails with
// *gardenerr.NothingToOffer if the overlap is empty.
func (s *Source) Subscribe(receiver Receiver) ([]Type, error) {
	mapping := receiver.ReceiverMapping()

	s.mu.Lock()
	defer s.mu.Unlock()

	var connected []Type
	for t := range s.provides {
		h, ok := mapping[t]
		if !ok {
			continue
		}
		s.handlers[t] = append(s.handlers[t], h)
		connected = append(connected, t)
	}
	if len(connected) == 0 {
		return nil, &gardenerr.NothingToOffer{Topic: string(firstKey(mapping))}
	}
	return connected, nil
}

// Emit dispatches msg to every handler registered for each type msg
// provides, running handlers concurrently and failing if any does.
// Emitting a type the Source never advertised is a programmer error.
func (s *Source) Emit(ctx context.Context, msg Msg) error {
	s.mu.RLock()
	var toRun []Handler
	for _, t := range msg.Types() {
		if !s.provides[t] {
			s.mu.RUnlock()
			panic("bus: Emit of undeclared type " + string(t))
		}
		toRun = append(toRun, s.handlers[t]...)
	}
	s.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, h := range toRun {
		h := h
		g.Go(func() error { return runHandler(ctx, h, msg) })
	}
	return g.Wait()
}

// runHandler calls h and converts a recovered panic into an error, so one
// handler's panic fails only its own Emit, not the rest of the process.
func runHandler(ctx context.Context, h Handler, msg Msg) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("bus: handler panic recovered")
			err = fmt.Errorf("bus: handler panicked: %v", r)
		}
	}()
	return h(ctx, msg)
}

func firstKey(m map[Type]Handler) Type {
	for k := range m {
		return k
	}
	return ""
}
