package store

import (
	"sync"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
type MemoryStore struct {
	mu          sync.RWMutex
	latest      Report
	hasLatest   bool
	subscribers map[chan Report]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan Report]struct{}),
	}
}

// Update stores r as the latest report and notifies all subscribers.
func (m *MemoryStore) Update(r Report) {
	m.mu.Lock()
	m.latest = r
	m.hasLatest = true
	m.mu.Unlock()

	m.notifySubscribers(r)
}

// Latest returns the most recent report.
//
// The Slots slice is copied; modifications do not affect the store.
func (m *MemoryStore) Latest() (Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := m.latest
	if r.Slots != nil {
		r.Slots = append(r.Slots[:0:0], r.Slots...)
	}
	return r, m.hasLatest
}

// Subscribe creates a new subscription.
//
// If the buffer fills (slow consumer), new updates are dropped for this
// subscriber. Caller must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan Report {
	ch := make(chan Report, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Report) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends r to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(r Report) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- r:
		default:
			// subscriber is slow, drop the message
		}
	}
}
