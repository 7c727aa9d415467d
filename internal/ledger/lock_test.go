package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLocker_AcquireTimesOut(t *testing.T) {
	l := NewLocalLocker(30 * time.Millisecond)
	unlock, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := l.Acquire(context.Background(), "k"); !errors.Is(err, ErrLockNotObtained) {
		t.Fatalf("expected ErrLockNotObtained, got %v", err)
	}
	if _, err := l.TryAcquire(context.Background(), "k"); !errors.Is(err, ErrLockNotObtained) {
		t.Fatalf("TryAcquire: expected ErrLockNotObtained, got %v", err)
	}

	other, err := l.TryAcquire(context.Background(), "other")
	if err != nil {
		t.Fatalf("independent key blocked: %v", err)
	}
	other()

	unlock()
	unlock()
	again, err := l.TryAcquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("TryAcquire after release: %v", err)
	}
	again()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.slots) != 0 {
		t.Fatalf("expected idle slots to be dropped, %d left", len(l.slots))
	}
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker(5 * time.Second)
	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Acquire(context.Background(), "shared")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			counter++
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("more than one holder at a time: %d", maxSeen)
	}
	if counter != 50 {
		t.Fatalf("expected 50 increments, got %d", counter)
	}
}

func TestLocalLocker_RespectsContext(t *testing.T) {
	l := NewLocalLocker(0)
	unlock, _ := l.Acquire(context.Background(), "k")
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, ErrLockNotObtained) {
		t.Fatalf("expected ErrLockNotObtained on cancelled context, got %v", err)
	}
}
