package lock

import (
	"sync"
	"testing"
)

func TestGetReturnsSameMutexForKey(t *testing.T) {
	m := NewManager()
	if m.Get("reward:1") != m.Get("reward:1") {
		t.Fatal("expected same mutex for same key")
	}
	if m.Get("reward:1") == m.Get("reward:2") {
		t.Fatal("expected distinct mutexes for distinct keys")
	}
}

func TestSerializesConcurrentWork(t *testing.T) {
	m := NewManager()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := m.Get("counter")
			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100, got %d", counter)
	}
}
