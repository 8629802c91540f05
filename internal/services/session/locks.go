package session

import (
	"context"
	"sync"
)

// lockArena hands out one exclusive lock per session id. Entries are
// reference counted and removed once no caller holds or waits on them, so
// the arena only grows with the number of sessions in flight.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]*lockEntry)}
}

// acquire blocks until the lock for id is held or ctx is done. The returned
// func releases the lock.
func (a *lockArena) acquire(ctx context.Context, id string) (func(), error) {
	a.mu.Lock()
	e, ok := a.locks[id]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		a.locks[id] = e
	}
	e.refs++
	a.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			a.unref(id, e)
		}, nil
	case <-ctx.Done():
		a.unref(id, e)
		return nil, ctx.Err()
	}
}

func (a *lockArena) unref(id string, e *lockEntry) {
	a.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(a.locks, id)
	}
	a.mu.Unlock()
}

// size returns the number of live lock entries.
func (a *lockArena) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
