package app

import "sync"

// GroupLocker serializes check-then-write sequences per shipment group.
// Entries are reference counted and removed when the last holder unlocks.
type GroupLocker struct {
	mu    sync.Mutex
	locks map[string]*groupLock
}

type groupLock struct {
	mu   sync.Mutex
	refs int
}

// NewGroupLocker creates an empty locker.
func NewGroupLocker() *GroupLocker {
	return &GroupLocker{locks: make(map[string]*groupLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (l *GroupLocker) Lock(key string) func() {
	l.mu.Lock()
	gl, ok := l.locks[key]
	if !ok {
		gl = &groupLock{}
		l.locks[key] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// held reports how many keys currently have holders or waiters.
func (l *GroupLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
