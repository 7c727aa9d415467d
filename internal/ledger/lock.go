package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrLockNotObtained = errors.New("lock not obtained")

// Locker serializes writers of the same inventory item.
type Locker interface {
	// Acquire blocks until the lock is held, the locker's wait budget runs
	// out, or ctx is done.
	Acquire(ctx context.Context, key string) (unlock func(), err error)
	// TryAcquire fails with ErrLockNotObtained instead of waiting.
	TryAcquire(ctx context.Context, key string) (unlock func(), err error)
}

// ItemLockKey is the Locker key guarding one inventory item.
func ItemLockKey(itemID string) string {
	return "inventory-item:" + itemID
}

// LocalLocker keeps item locks in process memory. It is correct only while a
// single server instance writes to the database.
type LocalLocker struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		wait:  wait,
		slots: make(map[string]*lockSlot),
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	s := l.ref(key)
	select {
	case s.ch <- struct{}{}:
		return l.unlocker(key, s), nil
	case <-ctx.Done():
		l.unref(key, s)
		return nil, fmt.Errorf("%w: %s: %v", ErrLockNotObtained, key, ctx.Err())
	}
}

func (l *LocalLocker) TryAcquire(_ context.Context, key string) (func(), error) {
	s := l.ref(key)
	select {
	case s.ch <- struct{}{}:
		return l.unlocker(key, s), nil
	default:
		l.unref(key, s)
		return nil, fmt.Errorf("%w: %s", ErrLockNotObtained, key)
	}
}

func (l *LocalLocker) ref(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(key string, s *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) unlocker(key string, s *lockSlot) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
	}
}
