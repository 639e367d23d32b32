package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitTimeout() <-chan time.Time {
	return time.After(2 * time.Second)
}

func TestHubReplaysLastSnapshotOnSubscribe(t *testing.T) {
	hub := NewHub[int]()
	hub.Publish(42)

	var got []int
	hub.Subscribe(func(v int) { got = append(got, v) })

	assert.Equal(t, []int{42}, got, "late subscriber must receive the last snapshot immediately")
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub[string]()

	var a, b []string
	hub.Subscribe(func(v string) { a = append(a, v) })
	hub.Subscribe(func(v string) { b = append(b, v) })

	hub.Publish("x")
	hub.Publish("y")

	assert.Equal(t, []string{"x", "y"}, a)
	assert.Equal(t, []string{"x", "y"}, b)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub[int]()

	var got []int
	unsub := hub.Subscribe(func(v int) { got = append(got, v) })

	hub.Publish(1)
	unsub()
	hub.Publish(2)

	assert.Equal(t, []int{1}, got)
}

func TestHubSubscriberMayCallBackIntoHub(t *testing.T) {
	hub := NewHub[int]()

	done := make(chan struct{})
	hub.Subscribe(func(v int) {
		// Reading hub state from inside a callback must not deadlock.
		_, _ = hub.Last()
		close(done)
	})

	go hub.Publish(7)

	select {
	case <-done:
	case <-waitTimeout():
		t.Fatal("subscriber callback deadlocked")
	}
}

func TestHubConcurrentPublish(t *testing.T) {
	hub := NewHub[int]()

	var mu sync.Mutex
	count := 0
	hub.Subscribe(func(v int) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			hub.Publish(v)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, count)
}
