package gardener

import (
	"context"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/gardenerr"
	"github.com/smilemakc/gardenflow/store"
)

// DataStorer is the store's single writer: on Data it calls store.Put, and
// only re-emits downstream when the write actually changed the stored
// value, which is the change-detection gate the rest of the pipeline relies
// on to avoid recomputing unchanged facts forever.
type DataStorer struct {
	store store.DataStore
	out   *bus.Source
}

// NewDataStorer creates a DataStorer backed by s, re-emitting changed Data
// through out, which must advertise bus.TypeData.
func NewDataStorer(s store.DataStore, out *bus.Source) *DataStorer {
	return &DataStorer{store: s, out: out}
}

func (d *DataStorer) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeData: d.handleData,
	}
}

func (d *DataStorer) handleData(ctx context.Context, msg bus.Msg) error {
	data, _ := msg.Data()

	changed, err := d.store.Put(ctx, data)
	if err != nil {
		return &gardenerr.StoreError{Op: "put", Cause: err}
	}
	if !changed {
		return nil
	}
	return d.out.Emit(ctx, msg)
}
