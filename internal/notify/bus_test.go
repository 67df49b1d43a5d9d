package notify

import (
	"sync"
	"testing"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	var got1, got2 []string
	bus.Subscribe(func(key string) { got1 = append(got1, key) })
	bus.Subscribe(func(key string) { got2 = append(got2, key) })

	bus.Publish("profreach:professors")

	if len(got1) != 1 || got1[0] != "profreach:professors" {
		t.Errorf("subscriber 1 got %v", got1)
	}
	if len(got2) != 1 {
		t.Errorf("subscriber 2 got %v", got2)
	}
}

func TestBus_PublishIsSynchronous(t *testing.T) {
	bus := NewBus()

	delivered := false
	bus.Subscribe(func(key string) { delivered = true })

	bus.Publish("k")
	if !delivered {
		t.Error("callback should complete before Publish returns")
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	count := 0
	unsub := bus.Subscribe(func(key string) { count++ })

	bus.Publish("k")
	unsub()
	bus.Publish("k")
	unsub() // idempotent

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := 0
	bus.Subscribe(func(key string) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Publish("k")
		}()
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(func(string) {})
			unsub()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if seen != 10 {
		t.Errorf("seen = %d, want 10", seen)
	}
}
