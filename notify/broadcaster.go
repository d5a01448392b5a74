package notify

import "sync"

// DefaultBuffer is the per-subscriber channel capacity used by New.
const DefaultBuffer = 16

// Broadcaster delivers values of type T to every current subscriber.
// The zero value is not usable; create one with New.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	subs    map[uint64]chan T
	next    uint64
	buffer  int
	dropped uint64
	closed  bool
}

// New creates a broadcaster with the given per-subscriber buffer.
// A buffer below 1 means DefaultBuffer.
func New[T any](buffer int) *Broadcaster[T] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Broadcaster[T]{
		subs:   make(map[uint64]chan T),
		buffer: buffer,
	}
}

// Subscribe returns a channel of future events and a function that ends the
// subscription and closes the channel. Cancel is safe to call more than once.
// Subscribing to a closed broadcaster returns an already closed channel.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish sends v to every subscriber with room in its buffer and returns
// how many received it.
func (b *Broadcaster[T]) Publish(v T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- v:
			delivered++
		default:
			b.dropped++
		}
	}
	return delivered
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *Broadcaster[T]) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close ends every subscription. Later Publish calls deliver nothing.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
