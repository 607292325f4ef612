package gridcore

import (
	"sync"

	"github.com/google/uuid"
)

// ChangeKind identifies what a ChangeEvent describes.
type ChangeKind int

// Change event kinds.
const (
	ChangeCellValue ChangeKind = iota
	ChangeCellStyle
	ChangeCellFormat
	ChangeRange
	ChangeRowInserted
	ChangeRowDeleted
	ChangeColumnInserted
	ChangeColumnDeleted
	ChangeMerge
	ChangeUnmerge
	ChangeReset
)

// ChangeEvent carries the minimal payload identifying the affected area:
// a coordinate for single-cell aspect changes, a range for area changes and
// merges, or an index for structural row/column changes.
type ChangeEvent struct {
	Kind  ChangeKind
	Coord Coordinate
	Range Range
	Index int
	Count int
}

// Subscription is a handle on a change feed registration.
type Subscription struct {
	id   uuid.UUID
	feed *ChangeFeed
	done chan struct{}
}

// Done is closed when the subscription ends, either by Cancel or because
// the feed itself was closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Cancel removes the subscription from the feed. Safe to call twice.
func (s *Subscription) Cancel() {
	s.feed.unsubscribe(s.id)
}

// ChangeFeed is a strict append-only publish/subscribe channel. Handlers run
// synchronously on the publishing goroutine and past events are never
// replayed to late subscribers.
type ChangeFeed struct {
	mu       sync.Mutex
	order    []uuid.UUID
	handlers map[uuid.UUID]func(ChangeEvent)
	subs     map[uuid.UUID]*Subscription
	closed   bool
}

// NewChangeFeed creates an empty feed.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		handlers: make(map[uuid.UUID]func(ChangeEvent)),
		subs:     make(map[uuid.UUID]*Subscription),
	}
}

// Subscribe registers a handler for every future event. Subscribing to a
// closed feed returns a subscription whose Done channel is already closed.
func (f *ChangeFeed) Subscribe(handler func(ChangeEvent)) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &Subscription{id: uuid.New(), feed: f, done: make(chan struct{})}
	if f.closed {
		close(sub.done)
		return sub
	}
	f.order = append(f.order, sub.id)
	f.handlers[sub.id] = handler
	f.subs[sub.id] = sub
	return sub
}

func (f *ChangeFeed) unsubscribe(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.subs[id]
	if !ok {
		return
	}
	delete(f.handlers, id)
	delete(f.subs, id)
	for i, sid := range f.order {
		if sid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	close(sub.done)
}

// publish delivers the event to every handler in subscription order.
// Publishing on a closed feed is a no-op.
func (f *ChangeFeed) publish(ev ChangeEvent) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	handlers := make([]func(ChangeEvent), 0, len(f.order))
	for _, id := range f.order {
		handlers = append(handlers, f.handlers[id])
	}
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

// close ends the feed: no further events are delivered and every
// subscriber's Done channel is closed.
func (f *ChangeFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for _, sub := range f.subs {
		close(sub.done)
	}
	f.order = nil
	f.handlers = make(map[uuid.UUID]func(ChangeEvent))
	f.subs = make(map[uuid.UUID]*Subscription)
}

// Closed reports whether the feed has ended.
func (f *ChangeFeed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
