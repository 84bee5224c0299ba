package gardener

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/gardenmodel"
	"github.com/smilemakc/gardenflow/store"
)

type capturingSink struct {
	mu  sync.Mutex
	got []gardenmodel.Work
}

func (s *capturingSink) Dispatch(_ context.Context, w gardenmodel.Work) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, w)
	return nil
}

func (s *capturingSink) works() []gardenmodel.Work {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gardenmodel.Work, len(s.got))
	copy(out, s.got)
	return out
}

func TestGardener_InputDrivesWorkForDependentPath(t *testing.T) {
	g := garden.New()
	require.NoError(t, g.AddPath("cake", "1", []garden.Ref{{Name: "flour", Version: "1"}}))

	gn := New(g, store.NewMemory())

	sink := &capturingSink{}
	_, err := gn.SubscribeWorkSink(sink)
	require.NoError(t, err)

	ctx := context.Background()
	in := gardenmodel.NewInput("e1", "flour", "1", "wheat")
	require.NoError(t, gn.InputReceived(ctx, in))

	works := sink.works()
	require.Len(t, works, 1)
	assert.Equal(t, "cake", works[0].Name())
	assert.Equal(t, "wheat", works[0].Inputs()[0].Value())
}

func TestGardener_ChangeGateSuppressesDuplicateInput(t *testing.T) {
	g := garden.New()
	require.NoError(t, g.AddPath("cake", "1", []garden.Ref{{Name: "flour", Version: "1"}}))

	gn := New(g, store.NewMemory())
	sink := &capturingSink{}
	_, err := gn.SubscribeWorkSink(sink)
	require.NoError(t, err)

	ctx := context.Background()
	in := gardenmodel.NewInput("e1", "flour", "1", "wheat")
	require.NoError(t, gn.InputReceived(ctx, in))
	require.NoError(t, gn.InputReceived(ctx, in))

	assert.Len(t, sink.works(), 1)
}

func TestGardener_ResultCompletesPathAndFeedsDataSubscribers(t *testing.T) {
	g := garden.New()
	require.NoError(t, g.AddPath("cake", "1", []garden.Ref{{Name: "flour", Version: "1"}}))
	require.NoError(t, g.AddPath("frosted-cake", "1", []garden.Ref{{Name: "cake", Version: "1"}}))

	gn := New(g, store.NewMemory())
	sink := &capturingSink{}
	_, err := gn.SubscribeWorkSink(sink)
	require.NoError(t, err)

	feed := &capturingDataReceiver{}
	_, err = gn.SubscribeDataFeed(feed)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gn.InputReceived(ctx, gardenmodel.NewInput("e1", "flour", "1", "wheat")))

	works := sink.works()
	require.Len(t, works, 1)
	cakeWork := works[0]

	inputs := []gardenmodel.ResultInput{
		gardenmodel.WorkInputToResultInput(cakeWork.Inputs()[0]),
	}
	result := gardenmodel.NewResult("e1", "cake", "1", cakeWork.Lineage(), "baked", inputs)
	require.NoError(t, gn.EmitResult(ctx, result))

	works = sink.works()
	require.Len(t, works, 2, "the new cake Data should have made frosted-cake's Work dispatchable")
	assert.Equal(t, "frosted-cake", works[1].Name())

	require.Len(t, feed.got, 2)
}

func TestGardener_StaleResultIsDropped(t *testing.T) {
	g := garden.New()
	require.NoError(t, g.AddPath("cake", "1", []garden.Ref{{Name: "flour", Version: "1"}}))

	gn := New(g, store.NewMemory())
	sink := &capturingSink{}
	_, err := gn.SubscribeWorkSink(sink)
	require.NoError(t, err)

	feed := &capturingDataReceiver{}
	_, err = gn.SubscribeDataFeed(feed)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gn.InputReceived(ctx, gardenmodel.NewInput("e1", "flour", "1", "wheat")))
	works := sink.works()
	require.Len(t, works, 1)

	// The flour input changes before the worker's result comes back: the
	// original input's hash is now stale.
	require.NoError(t, gn.InputReceived(ctx, gardenmodel.NewInput("e1", "flour", "1", "rye")))
	require.Len(t, feed.got, 2, "both flour values should have committed")

	staleInputs := []gardenmodel.ResultInput{
		gardenmodel.WorkInputToResultInput(works[0].Inputs()[0]),
	}
	result := gardenmodel.NewResult("e1", "cake", "1", works[0].Lineage(), "baked", staleInputs)
	require.NoError(t, gn.EmitResult(ctx, result))

	// The stale result must not have produced a committed cake Data.
	for _, d := range feed.got {
		assert.NotEqual(t, "cake", d.Name())
	}
}

func TestGardener_ResultErrorIsAbsorbedWithoutPanicking(t *testing.T) {
	g := garden.New()
	gn := New(g, store.NewMemory())

	ctx := context.Background()
	re := gardenmodel.NewResultError("e1", "cake", "1", "lineage-1", "oven broke", nil)
	assert.NoError(t, gn.EmitResultError(ctx, re))
}
