package service

import (
	"sync"

	"github.com/ndewijer/testnet-portfolio-panel/internal/model"
)

const subscriberBuffer = 8

// Broadcaster fans recorded snapshots out to live subscribers.
// Publishing never blocks; a subscriber that falls behind misses snapshots.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan model.ValuationRecord]struct{}
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan model.ValuationRecord]struct{}),
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan model.ValuationRecord, func()) {
	ch := make(chan model.ValuationRecord, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers record to every subscriber with room in its buffer.
func (b *Broadcaster) Publish(record model.ValuationRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- record:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
