package gardener

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

type capturingDataReceiver struct {
	got []gardenmodel.Data
}

func (c *capturingDataReceiver) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeData: func(_ context.Context, msg bus.Msg) error {
			d, _ := msg.Data()
			c.got = append(c.got, d)
			return nil
		},
	}
}

func TestToDataConverter_ConvertsInput(t *testing.T) {
	out := bus.NewSource(bus.TypeData)
	recv := &capturingDataReceiver{}
	_, err := out.Subscribe(recv)
	require.NoError(t, err)

	c := NewToDataConverter(out)
	src := bus.NewSource(bus.TypeInput)
	_, err = src.Subscribe(inputOnly{c})
	require.NoError(t, err)

	in := gardenmodel.NewInput("e1", "flour", "1", "wheat")
	require.NoError(t, src.Emit(context.Background(), bus.InputMsg(in)))

	require.Len(t, recv.got, 1)
	assert.Equal(t, "wheat", recv.got[0].Value())
	assert.Equal(t, gardenmodel.LinealHash("flour", "1"), recv.got[0].Lineage())
}

func TestToDataConverter_ConvertsResult(t *testing.T) {
	out := bus.NewSource(bus.TypeData)
	recv := &capturingDataReceiver{}
	_, err := out.Subscribe(recv)
	require.NoError(t, err)

	c := NewToDataConverter(out)
	r := gardenmodel.NewResult("e1", "cake", "1", "lineage-1", "baked", nil)
	require.NoError(t, c.handleResult(context.Background(), bus.ResultMsg(r)))

	require.Len(t, recv.got, 1)
	assert.Equal(t, "baked", recv.got[0].Value())
	assert.Equal(t, "lineage-1", recv.got[0].Lineage())
}

func TestToDataConverter_AbsorbsResultError(t *testing.T) {
	out := bus.NewSource(bus.TypeData)
	recv := &capturingDataReceiver{}
	_, err := out.Subscribe(recv)
	require.NoError(t, err)

	c := NewToDataConverter(out)
	re := gardenmodel.NewResultError("e1", "cake", "1", "lineage-1", "oven broke", nil)
	require.NoError(t, c.handleResultError(context.Background(), bus.ResultErrorMsg(re)))

	assert.Empty(t, recv.got)
}
