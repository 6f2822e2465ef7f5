package review

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKeyAndCleansUp(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(7)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("counter = %d, want 100", counter)
	}
	if n := k.size(); n != 0 {
		t.Errorf("lock entries after release = %d, want 0", n)
	}
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	unlockA := k.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock(2)
		unlockB()
		close(done)
	}()
	<-done
}
