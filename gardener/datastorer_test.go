package gardener

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/gardenmodel"
	"github.com/smilemakc/gardenflow/store"
)

func TestDataStorer_EmitsOnlyWhenChanged(t *testing.T) {
	s := store.NewMemory()
	out := bus.NewSource(bus.TypeData)
	recv := &capturingDataReceiver{}
	_, err := out.Subscribe(recv)
	require.NoError(t, err)

	d := NewDataStorer(s, out)

	data := gardenmodel.NewData("e1", "flour", "1", "l1", "wheat")
	require.NoError(t, d.handleData(context.Background(), bus.DataMsg(data)))
	require.Len(t, recv.got, 1)

	// Re-emitting the identical value must not re-trigger downstream.
	require.NoError(t, d.handleData(context.Background(), bus.DataMsg(data)))
	assert.Len(t, recv.got, 1)

	// A changed value for the same key re-triggers.
	changed := gardenmodel.NewData("e1", "flour", "1", "l1", "rye")
	require.NoError(t, d.handleData(context.Background(), bus.DataMsg(changed)))
	assert.Len(t, recv.got, 2)
}
