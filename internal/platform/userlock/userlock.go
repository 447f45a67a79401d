package userlock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// KeyedMutex hands out one lock per user id so same-user work is
// serialized while different users proceed in parallel. Entries are
// reference-counted and dropped once nobody holds or waits on them, so
// the map does not grow with the user population.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[uuid.UUID]*entry)}
}

// TryLock acquires the user's lock without waiting. It returns a release
// func and true, or nil and false when the lock is already held.
func (k *KeyedMutex) TryLock(userID uuid.UUID) (func(), bool) {
	e := k.retain(userID)
	if !e.sem.TryAcquire(1) {
		k.release(userID)
		return nil, false
	}
	return k.releaseFunc(userID, e), true
}

// Lock waits for the user's lock, honoring ctx cancellation.
func (k *KeyedMutex) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	e := k.retain(userID)
	if err := e.sem.Acquire(ctx, 1); err != nil {
		k.release(userID)
		return nil, err
	}
	return k.releaseFunc(userID, e), nil
}

func (k *KeyedMutex) retain(userID uuid.UUID) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[userID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		k.entries[userID] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) release(userID uuid.UUID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[userID]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(k.entries, userID)
	}
}

func (k *KeyedMutex) releaseFunc(userID uuid.UUID, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			k.release(userID)
		})
	}
}
