package gomoku

import (
	"sync"
)

// Sink receives events for one connection. Deliver must not block; it
// returns false when the connection cannot take more events.
type Sink interface {
	Deliver(ev Event) bool
}

// Broadcaster fans events out to every connection bound to a room.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string]Sink
}

func newBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]Sink),
	}
}

func (b *Broadcaster) Subscribe(connID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[connID] = sink
}

func (b *Broadcaster) Unsubscribe(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, connID)
}

// Len returns the number of subscribed connections.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subscribers)
}

// Publish delivers events, in order, to every subscriber. Subscribers that
// refuse an event are dropped.
func (b *Broadcaster) Publish(events ...Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sink := range b.subscribers {
		for _, ev := range events {
			if !sink.Deliver(ev) {
				delete(b.subscribers, id)
				break
			}
		}
	}
}

// Send delivers events to a single subscriber.
func (b *Broadcaster) Send(connID string, events ...Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sink, ok := b.subscribers[connID]
	if !ok {
		return
	}

	for _, ev := range events {
		if !sink.Deliver(ev) {
			delete(b.subscribers, connID)
			return
		}
	}
}

func (b *Broadcaster) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.subscribers)
}
