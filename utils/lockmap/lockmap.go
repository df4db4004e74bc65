// Package lockmap provides mutexes keyed by arbitrary
// comparable values. A key's mutex only exists while
// somebody holds or waits for it.
package lockmap

import (
	"fmt"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// LockMap is a set of mutexes indexed by key.
// The zero value is ready to use.
type LockMap struct {
	mu    sync.Mutex
	locks map[interface{}]*entry
}

// Lock locks the mutex for key, blocking
// until it is available
func (lm *LockMap) Lock(key interface{}) {
	lm.acquire(key).mu.Lock()
}

// Unlock unlocks the mutex for key. It panics if
// the mutex for key is not locked.
func (lm *LockMap) Unlock(key interface{}) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	e, ok := lm.locks[key]

	if !ok {
		panic(fmt.Sprintf("Precondition failed: Mutex for %v does not exist", key))
	}

	e.mu.Unlock()
	e.refs--

	if e.refs == 0 {
		delete(lm.locks, key)
	}
}

// Len returns the number of keys that are currently
// locked or waited on
func (lm *LockMap) Len() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	return len(lm.locks)
}

func (lm *LockMap) acquire(key interface{}) *entry {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.locks == nil {
		lm.locks = map[interface{}]*entry{}
	}

	e, ok := lm.locks[key]

	if !ok {
		e = &entry{}
		lm.locks[key] = e
	}

	e.refs++

	return e
}
