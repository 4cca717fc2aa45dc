// Package notify broadcasts change events so connected clients can
// refresh after the ledger moves underneath them.
package notify

import (
	"context"
	"sync"
)

// EventKind identifies which part of the ledger changed.
type EventKind string

const (
	KindCustomer    EventKind = "customer"
	KindInventory   EventKind = "inventory"
	KindTransaction EventKind = "transaction"
)

// Event describes a single change. Key is the entity identifier
// (customer ID, brand name or transaction ID).
type Event struct {
	Kind   EventKind `json:"kind"`
	Key    string    `json:"key"`
	Action string    `json:"action"`
}

// Notifier publishes change events.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Broadcaster is an in-process Notifier. Subscribers receive events on
// buffered channels; a slow subscriber drops events rather than blocking
// the publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster creates an in-process Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function
// removes the subscription and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has buffer space.
func (b *Broadcaster) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Close removes and closes all subscriptions.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	return nil
}

var _ Notifier = (*Broadcaster)(nil)
