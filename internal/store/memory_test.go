package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/slotwatch/schedule"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Latest()
	assert.False(t, ok, "Latest() on empty store")
}

func TestMemoryStore_UpdateReplacesLatest(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Report{ID: "first", Fetched: true})
	store.Update(Report{ID: "second", Fetched: false})

	got, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, "second", got.ID)
	assert.False(t, got.Fetched)
}

func TestMemoryStore_LatestReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	store.Update(Report{ID: "r", Slots: []schedule.Slot{{Department: "儿科"}}})

	got, _ := store.Latest()
	got.Slots[0].Department = "changed"

	again, _ := store.Latest()
	assert.Equal(t, "儿科", again.Slots[0].Department, "store mutated through Latest()")
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	go store.Update(Report{ID: "r1"})

	select {
	case r := <-ch:
		assert.Equal(t, "r1", r.ID)
	case <-time.After(time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	store.Unsubscribe(ch) // second call is a no-op

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "Unsubscribe() channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			store.Update(Report{ID: "r"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Update(Report{ID: "r"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = store.Latest()
			}
		}()
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}
	wg.Wait()
}
