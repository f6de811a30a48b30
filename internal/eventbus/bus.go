package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event types published by pewsched services.
const (
	// TypeTransition carries a Transition when a rule changes state.
	TypeTransition = "rule.transition"
	// TypeRulesApplied carries the new rule names after a config reload.
	TypeRulesApplied = "rules.applied"
)

// Event is a small in-memory signal used to decouple components.
//
// Publish never blocks; subscribers get buffered channels and a slow
// subscriber drops events.
type Event struct {
	Type string
	Time time.Time
	Data any
}

// Transition is the Data of a TypeTransition event.
type Transition struct {
	Rule   string
	Active bool
	// At is the civil date-time (ISO text) the state was sampled at.
	At string
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory fanout bus. It owns no goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Deliver under the read lock: unsubscribe takes the write lock before
	// closing, so no send can hit a closed channel.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}
