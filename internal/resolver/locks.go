package resolver

import "sync"

// KeyedLocks serializes simulate-then-commit sequences that contend on the
// same key.  Rule creation locks "weekday:<n>"; exception upserts lock the
// ISO date.  Without this, two concurrent writers could each observe the
// capacity as not yet exceeded and both commit, violating the invariant.
// Locks are never released from the map; the key space (7 weekdays plus the
// dates actively being edited) stays small.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedLocks returns an empty lock table.
func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use, and returns the
// matching unlock function.
func (k *KeyedLocks) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
