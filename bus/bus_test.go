package bus_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/gardenerr"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

type fakeReceiver struct {
	mapping map[bus.Type]bus.Handler
}

func (f fakeReceiver) ReceiverMapping() map[bus.Type]bus.Handler { return f.mapping }

func TestSubscribe_ConnectsOnlyOverlap(t *testing.T) {
	src := bus.NewSource(bus.TypeData, bus.TypeWork)

	var got []bus.Msg
	recv := fakeReceiver{mapping: map[bus.Type]bus.Handler{
		bus.TypeData: func(_ context.Context, m bus.Msg) error {
			got = append(got, m)
			return nil
		},
		bus.TypeInput: func(_ context.Context, m bus.Msg) error { return nil },
	}}

	connected, err := src.Subscribe(recv)
	require.NoError(t, err)
	assert.Equal(t, []bus.Type{bus.TypeData}, connected)
}

func TestSubscribe_NoOverlapFailsNothingToOffer(t *testing.T) {
	src := bus.NewSource(bus.TypeWork)
	recv := fakeReceiver{mapping: map[bus.Type]bus.Handler{
		bus.TypeInput: func(_ context.Context, m bus.Msg) error { return nil },
	}}

	_, err := src.Subscribe(recv)
	var nto *gardenerr.NothingToOffer
	require.ErrorAs(t, err, &nto)
}

func TestEmit_InvokesAllHandlersForType(t *testing.T) {
	src := bus.NewSource(bus.TypeData)

	var calls int32
	for i := 0; i < 3; i++ {
		_, err := src.Subscribe(fakeReceiver{mapping: map[bus.Type]bus.Handler{
			bus.TypeData: func(_ context.Context, m bus.Msg) error {
				atomic.AddInt32(&calls, 1)
				return nil
			},
		}})
		require.NoError(t, err)
	}

	err := src.Emit(context.Background(), bus.DataMsg(gardenmodel.NewData("joe", "flour", "1", "l1", "wheat")))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls)
}

func TestEmit_FailsIfAnyHandlerFails(t *testing.T) {
	src := bus.NewSource(bus.TypeData)
	boom := errors.New("boom")

	_, err := src.Subscribe(fakeReceiver{mapping: map[bus.Type]bus.Handler{
		bus.TypeData: func(_ context.Context, m bus.Msg) error { return boom },
	}})
	require.NoError(t, err)

	err = src.Emit(context.Background(), bus.DataMsg(gardenmodel.NewData("joe", "flour", "1", "l1", "wheat")))
	assert.ErrorIs(t, err, boom)
}

func TestEmit_UndeclaredTypePanics(t *testing.T) {
	src := bus.NewSource(bus.TypeData)
	assert.Panics(t, func() {
		_ = src.Emit(context.Background(), bus.WorkMsg(gardenmodel.NewWork("joe", "cake", "1", "l", nil)))
	})
}

func TestEmit_RecoversHandlerPanicAsError(t *testing.T) {
	src := bus.NewSource(bus.TypeData)

	var otherCalled int32
	_, err := src.Subscribe(fakeReceiver{mapping: map[bus.Type]bus.Handler{
		bus.TypeData: func(_ context.Context, m bus.Msg) error {
			panic("handler blew up")
		},
	}})
	require.NoError(t, err)
	_, err = src.Subscribe(fakeReceiver{mapping: map[bus.Type]bus.Handler{
		bus.TypeData: func(_ context.Context, m bus.Msg) error {
			atomic.AddInt32(&otherCalled, 1)
			return nil
		},
	}})
	require.NoError(t, err)

	err = src.Emit(context.Background(), bus.DataMsg(gardenmodel.NewData("joe", "flour", "1", "l1", "wheat")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler blew up")
	assert.Equal(t, int32(1), otherCalled, "a sibling handler's panic must not prevent this handler from running")
}
