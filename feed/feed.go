// Package feed implements the spectator live feed: any number of
// subscribers can watch every Data point a Gardener commits, each over its
// own buffered channel.
//
// Grounded on the now-removed internal/infrastructure/websocket/hub.go's register/broadcast
// shape: a set of subscribers guarded by a mutex, broadcast fanning out to
// each subscriber's own buffered channel, and a full channel being a drop
// rather than a block (hub.broadcastEvent's `select { case ch<-: default:
// }`). The per-(user/workflow/execution) subscription indexing that hub
// layers on top does not carry over: a feed subscriber here always watches
// every entity.
package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/bus"
	"github.com/smilemakc/gardenflow/gardenmodel"
)

// Subscriber receives the Data points the Feed broadcasts until Unsubscribe
// closes it. A point broadcast while its buffer is full is dropped for that
// subscriber.
type Subscriber chan gardenmodel.Data

// Feed fans committed Data out to its subscribers. It is a bus.Receiver:
// wire it in with Gardener.SubscribeDataFeed.
type Feed struct {
	mu   sync.RWMutex
	subs map[Subscriber]bool
}

// New creates an empty Feed.
func New() *Feed {
	return &Feed{subs: make(map[Subscriber]bool)}
}

func (f *Feed) ReceiverMapping() map[bus.Type]bus.Handler {
	return map[bus.Type]bus.Handler{
		bus.TypeData: f.handleData,
	}
}

func (f *Feed) handleData(_ context.Context, msg bus.Msg) error {
	d, _ := msg.Data()

	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subs {
		select {
		case sub <- d:
		default:
			log.Warn().Str("entity", d.Entity()).Str("name", d.Name()).
				Msg("feed: subscriber buffer full, dropping Data")
		}
	}
	return nil
}

// Subscribe registers a new Subscriber with the given buffer size.
func (f *Feed) Subscribe(buffer int) Subscriber {
	sub := make(Subscriber, buffer)
	f.mu.Lock()
	f.subs[sub] = true
	f.mu.Unlock()
	return sub
}

// Unsubscribe removes and closes sub. A sub not currently registered is a
// no-op.
func (f *Feed) Unsubscribe(sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.subs[sub] {
		return
	}
	delete(f.subs, sub)
	close(sub)
}

// SubscriberCount reports how many subscribers are currently registered.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
