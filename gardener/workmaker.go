package gardener

import (
	"context"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/gardenmodel"
	"github.com/smilemakc/gardenflow/store"
)

// WorkMaker expands a changed Data point into every Work item it newly
// makes computable: every path that requires (d.name, d.version) gets a
// TryCompute pass, which forms the Cartesian product of candidate values for
// each of its recipe's inputs and emits one Work per combination.
type WorkMaker struct {
	garden *garden.Garden
	store  store.DataStore
	out    *bus.Source
}

// NewWorkMaker creates a WorkMaker driven by g and s, emitting Work through
// out, which must advertise bus.TypeWork.
func NewWorkMaker(g *garden.Garden, s store.DataStore, out *bus.Source) *WorkMaker {
	return &WorkMaker{garden: g, store: s, out: out}
}

func (m *WorkMaker) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeData: m.handleData,
	}
}

func (m *WorkMaker) handleData(ctx context.Context, msg bus.Msg) error {
	d, _ := msg.Data()

	for _, dest := range m.garden.PathsRequiring(d.Name(), d.Version()) {
		if err := m.TryCompute(ctx, d.Entity(), dest.Name, dest.Version); err != nil {
			return err
		}
	}
	return nil
}

// TryCompute attempts every recipe declared for (name, version) against
// entity's currently stored candidates, emitting one Work per viable
// combination. A recipe with any empty candidate list is skipped, not
// failed: other recipes (or a future Data point) may still complete it.
func (m *WorkMaker) TryCompute(ctx context.Context, entity, name, version string) error {
	for _, recipe := range m.garden.InputsFor(name, version) {
		candidateLists := make([][]gardenmodel.Data, len(recipe))
		skip := false
		for i, in := range recipe {
			n, v := in.Name, in.Version
			rows, err := m.store.Get(ctx, entity, &n, &v, nil)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				skip = true
				break
			}
			candidateLists[i] = rows
		}
		if skip {
			continue
		}

		for _, combo := range cartesian(candidateLists) {
			lineages := make([]string, len(combo))
			inputs := make([]gardenmodel.WorkInput, len(combo))
			for i, c := range combo {
				lineages[i] = c.Lineage()
				inputs[i] = gardenmodel.DataToWorkInput(c)
			}
			lineage := gardenmodel.LinealHash(name, version, lineages...)
			work := gardenmodel.NewWork(entity, name, version, lineage, inputs)
			if err := m.out.Emit(ctx, bus.WorkMsg(work)); err != nil {
				return err
			}
		}
	}
	return nil
}

// cartesian returns the Cartesian product of lists, one choice per list, in
// the same order the lists were given. An empty input returns no
// combinations.
func cartesian(lists [][]gardenmodel.Data) [][]gardenmodel.Data {
	if len(lists) == 0 {
		return nil
	}
	combos := [][]gardenmodel.Data{{}}
	for _, list := range lists {
		var next [][]gardenmodel.Data
		for _, combo := range combos {
			for _, item := range list {
				extended := make([]gardenmodel.Data, len(combo)+1)
				copy(extended, combo)
				extended[len(combo)] = item
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}
