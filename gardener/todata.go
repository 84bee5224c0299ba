// Package gardener composes the pipeline stages the rest of this module
// provides into the one documented data flow: validated Result/ResultError
// and raw Input both converge on Data, Data passes through the store's
// change gate, and a changed Data point triggers WorkMaker to expand every
// path that requires it into dispatchable Work.
//
// Grounded on the now-removed internal/infrastructure/monitoring observer's
// register-then-notify shape for the fan-out plumbing, and on
// the now-removed internal/engine/graph.go's traversal style for WorkMaker's path walk; each
// stage below is a bus.Receiver feeding a bus.Source, composed in gardener.go.
package gardener

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

// ToDataConverter receives Input or Result and emits the corresponding
// Data. A ResultError is dropped with a log record: this is the single
// point where worker-reported failures are absorbed.
type ToDataConverter struct {
	out *bus.Source
}

// NewToDataConverter creates a ToDataConverter that emits converted Data
// through out, which must advertise bus.TypeData.
func NewToDataConverter(out *bus.Source) *ToDataConverter {
	return &ToDataConverter{out: out}
}

func (c *ToDataConverter) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeInput:       c.handleInput,
		bus.TypeResult:      c.handleResult,
		bus.TypeResultError: c.handleResultError,
	}
}

func (c *ToDataConverter) handleInput(ctx context.Context, msg bus.Msg) error {
	in, _ := msg.Input()
	return c.out.Emit(ctx, bus.DataMsg(gardenmodel.InputToData(in)))
}

func (c *ToDataConverter) handleResult(ctx context.Context, msg bus.Msg) error {
	r, _ := msg.Result()
	return c.out.Emit(ctx, bus.DataMsg(gardenmodel.ResultToData(r)))
}

func (c *ToDataConverter) handleResultError(_ context.Context, msg bus.Msg) error {
	re, _ := msg.ResultError()
	log.Warn().
		Str("entity", re.Entity()).
		Str("name", re.Name()).
		Str("version", re.Version()).
		Str("lineage", re.Lineage()).
		Str("error", re.Error()).
		Interface("inputs", re.Inputs()).
		Msg("gardener: worker function failed, dropping result")
	return nil
}
