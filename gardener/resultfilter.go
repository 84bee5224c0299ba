package gardener

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/gardenmodel"
	"github.com/smilemakc/gardenflow/store"
)

// InvalidResultFilter guards the commit of a worker's Result against two
// races: a recipe that no longer exists (the path was never declared that
// way), and an input that changed between dispatch and completion. It is
// the only stage that defends against a user mutating an input after a
// worker was dispatched but before it returned.
type InvalidResultFilter struct {
	garden *garden.Garden
	store  store.DataStore
	out    *bus.Source
}

// NewInvalidResultFilter creates a filter validating against g and s,
// forwarding survivors through out, which must advertise bus.TypeResult and
// bus.TypeResultError.
func NewInvalidResultFilter(g *garden.Garden, s store.DataStore, out *bus.Source) *InvalidResultFilter {
	return &InvalidResultFilter{garden: g, store: s, out: out}
}

func (f *InvalidResultFilter) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeResult:      f.handleResult,
		bus.TypeResultError: f.handleResultError,
	}
}

// handleResultError passes every ResultError straight through: there is no
// value to validate, and ToDataConverter is the stage that absorbs it.
func (f *InvalidResultFilter) handleResultError(ctx context.Context, msg bus.Msg) error {
	return f.out.Emit(ctx, msg)
}

func (f *InvalidResultFilter) handleResult(ctx context.Context, msg bus.Msg) error {
	r, _ := msg.Result()

	if !f.pathIsValid(r) {
		log.Debug().Str("name", r.Name()).Str("version", r.Version()).
			Msg("gardener: result dropped, recipe no longer declared")
		return nil
	}

	fresh, err := f.isFresh(ctx, r)
	if err != nil {
		return err
	}
	if !fresh {
		log.Debug().Str("name", r.Name()).Str("version", r.Version()).
			Msg("gardener: result dropped, stale inputs")
		return nil
	}

	return f.out.Emit(ctx, msg)
}

func (f *InvalidResultFilter) pathIsValid(r gardenmodel.Result) bool {
	have := make([]garden.Ref, len(r.Inputs()))
	for i, in := range r.Inputs() {
		have[i] = in.Ref()
	}

	for _, recipe := range f.garden.InputsFor(r.Name(), r.Version()) {
		if refsEqual(recipe, have) {
			return true
		}
	}
	return false
}

func refsEqual(a, b []garden.Ref) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (f *InvalidResultFilter) isFresh(ctx context.Context, r gardenmodel.Result) (bool, error) {
	for _, in := range r.Inputs() {
		name, version, lineage := in.Name(), in.Version(), in.Lineage()
		rows, err := f.store.Get(ctx, r.Entity(), &name, &version, &lineage)
		if err != nil {
			return false, err
		}
		if len(rows) != 1 {
			return false, nil
		}
		if gardenmodel.ValueHash(rows[0].Value()) != in.Hash() {
			return false, nil
		}
	}
	return true, nil
}
