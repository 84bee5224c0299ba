package gardener

import (
	"context"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/gardenmodel"
	"github.com/smilemakc/gardenflow/store"
)

// WorkSink is whatever dispatches Work to a connected worker on the
// Gardener's behalf; transport/wsworker.GardenerTransport implements it.
type WorkSink interface {
	Dispatch(ctx context.Context, w gardenmodel.Work) error
}

type workSinkReceiver struct {
	sink WorkSink
}

func (r workSinkReceiver) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeWork: func(ctx context.Context, msg bus.Msg) error {
			w, _ := msg.Work()
			return r.sink.Dispatch(ctx, w)
		},
	}
}

// Gardener composes every pipeline stage into the documented data flow:
//
//	resultFilter -> toData -> storer -> workMaker -> (Work sink: transport)
//	                                              \-> (Work emitted to subscribers)
//
// External Input/Result/ResultError ingress fans into toData/resultFilter
// appropriately, and the Gardener implements the collaborator interfaces a
// transport needs to subscribe itself for outbound Work: call
// SubscribeWorkSink with any WorkSink, or SubscribeDataFeed with any
// bus.Receiver of Data for a spectator feed, to wire it in.
type Gardener struct {
	garden *garden.Garden
	store  store.DataStore

	inputSource     *bus.Source // advertises Input, Result, ResultError for ingress
	convertedSource *bus.Source // advertises Data; toData's output, storer's input
	committedSource *bus.Source // advertises Data; storer's output (post change-gate), workMaker's input and the feed tap
	resultSource    *bus.Source // advertises Result, ResultError; resultFilter's output
	workSource      *bus.Source // advertises Work; workMaker's output

	toData       *ToDataConverter
	resultFilter *InvalidResultFilter
	storer       *DataStorer
	workMaker    *WorkMaker
}

// New wires a complete Gardener around g (the path DAG) and s (the backing
// store).
func New(g *garden.Garden, s store.DataStore) *Gardener {
	gn := &Gardener{
		garden:          g,
		store:           s,
		inputSource:     bus.NewSource(bus.TypeInput, bus.TypeResult, bus.TypeResultError),
		convertedSource: bus.NewSource(bus.TypeData),
		committedSource: bus.NewSource(bus.TypeData),
		resultSource:    bus.NewSource(bus.TypeResult, bus.TypeResultError),
		workSource:      bus.NewSource(bus.TypeWork),
	}

	gn.toData = NewToDataConverter(gn.convertedSource)
	gn.resultFilter = NewInvalidResultFilter(g, s, gn.resultSource)
	gn.storer = NewDataStorer(s, gn.committedSource)
	gn.workMaker = NewWorkMaker(g, s, gn.workSource)

	// Input goes straight to toData; Result/ResultError go through the
	// validation filter first, and the filter's survivors feed toData too.
	must(gn.inputSource.Subscribe(inputOnly{gn.toData}))
	must(gn.inputSource.Subscribe(resultOnly{gn.resultFilter}))
	must(gn.resultSource.Subscribe(gn.toData))

	// Every converted Data passes through the store's change gate; only
	// what the gate lets through (committedSource) reaches workMaker and
	// any spectator feed.
	must(gn.convertedSource.Subscribe(gn.storer))
	must(gn.committedSource.Subscribe(gn.workMaker))

	return gn
}

// inputOnly narrows a Receiver's mapping to just TypeInput, so Subscribe's
// common-type computation doesn't also wire toData's Result/ResultError
// handlers into inputSource (which would double-handle Results delivered
// through resultSource as well).
type inputOnly struct{ r bus.Receiver }

func (o inputOnly) ReceiverMapping() map[bus.Type]bus.Handler {
	m := o.r.ReceiverMapping()
	return map[bus.Type]bus.Handler{bus.TypeInput: m[bus.TypeInput]}
}

type resultOnly struct{ r bus.Receiver }

func (o resultOnly) ReceiverMapping() map[bus.Type]bus.Handler {
	m := o.r.ReceiverMapping()
	return map[bus.Type]bus.Handler{
		bus.TypeResult:      m[bus.TypeResult],
		bus.TypeResultError: m[bus.TypeResultError],
	}
}

func must(_ []bus.Type, err error) {
	if err != nil {
		panic(err)
	}
}

// SubscribeWorkSink wires sink to receive every Work the pipeline produces
// (e.g. a GardenerTransport's Dispatch), returning the connected types.
func (g *Gardener) SubscribeWorkSink(sink WorkSink) ([]bus.Type, error) {
	return g.workSource.Subscribe(workSinkReceiver{sink: sink})
}

// SubscribeDataFeed wires an external spectator receiver to every committed
// Data point, for a live feed of what the gardener has learned.
func (g *Gardener) SubscribeDataFeed(r bus.Receiver) ([]bus.Type, error) {
	return g.committedSource.Subscribe(r)
}

// InputReceived is the external entry point for a freshly supplied Input
// fact (e.g. the HTTP input endpoint).
func (g *Gardener) InputReceived(ctx context.Context, in gardenmodel.Input) error {
	return g.inputSource.Emit(ctx, bus.InputMsg(in))
}

// EmitResult satisfies transport/wsworker.ResultSink: a worker's successful
// completion enters through the validation filter.
func (g *Gardener) EmitResult(ctx context.Context, r gardenmodel.Result) error {
	return g.inputSource.Emit(ctx, bus.ResultMsg(r))
}

// EmitResultError satisfies transport/wsworker.ResultSink: a worker's failed
// completion enters through the validation filter (which passes every
// ResultError straight through to toData for logging and absorption).
func (g *Gardener) EmitResultError(ctx context.Context, e gardenmodel.ResultError) error {
	return g.inputSource.Emit(ctx, bus.ResultErrorMsg(e))
}
