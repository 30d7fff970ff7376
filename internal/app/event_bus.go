package app

import (
	"sync"

	"github.com/yourusername/sstube-go/internal/domain"
)

// EventBus fans scheduler events out to subscribers. Each subscriber has an
// unbounded buffer drained by its own goroutine, so Publish never blocks and
// every subscriber sees every event in publish order.
type EventBus struct {
	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
	closed bool
}

type subscription struct {
	out    chan domain.Event
	notify chan struct{}
	quit   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	buffer []domain.Event
}

// NewEventBus creates an event bus
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]*subscription)}
}

// Subscribe returns a channel of events and a function that ends the subscription.
// The channel is closed after unsubscribe or Close.
func (b *EventBus) Subscribe() (<-chan domain.Event, func()) {
	sub := &subscription{
		out:    make(chan domain.Event),
		notify: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.out)
		return sub.out, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go sub.deliver()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			sub.stop()
		})
	}
	return sub.out, unsubscribe
}

// Publish hands the event to every subscriber
func (b *EventBus) Publish(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		sub.push(event)
	}
}

// SubscriberCount returns the number of live subscriptions
func (b *EventBus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription
func (b *EventBus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[int]*subscription)
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *subscription) push(event domain.Event) {
	s.mu.Lock()
	s.buffer = append(s.buffer, event)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.quit) })
}

// deliver moves buffered events to out until stopped
func (s *subscription) deliver() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.buffer) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.quit:
				return
			}
		}
		event := s.buffer[0]
		s.buffer[0] = domain.Event{}
		s.buffer = s.buffer[1:]
		s.mu.Unlock()

		select {
		case s.out <- event:
		case <-s.quit:
			return
		}
	}
}
