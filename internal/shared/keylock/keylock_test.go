package keylock

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	l := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("sub-1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 200 {
		t.Fatalf("expected 200 increments, got %d", counter)
	}
	if l.Len() != 0 {
		t.Fatalf("expected no tracked keys after release, got %d", l.Len())
	}
}

func TestLockIndependentKeys(t *testing.T) {
	l := New()
	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()
	<-done
}
