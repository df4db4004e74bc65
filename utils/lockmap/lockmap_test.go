package lockmap_test

import (
	"sync"
	"testing"

	"github.com/jrife/tally/utils/lockmap"
)

func TestLockMapExclusion(t *testing.T) {
	var lm lockmap.LockMap
	var wg sync.WaitGroup

	counters := map[int]int{}
	var countersMu sync.Mutex

	for i := 0; i < 50; i++ {
		for key := 0; key < 4; key++ {
			wg.Add(1)

			go func(key int) {
				defer wg.Done()

				lm.Lock(key)
				defer lm.Unlock(key)

				countersMu.Lock()
				value := counters[key]
				countersMu.Unlock()

				// read-modify-write that only stays correct
				// if the key's mutex provides exclusion
				countersMu.Lock()
				counters[key] = value + 1
				countersMu.Unlock()
			}(key)
		}
	}

	wg.Wait()

	for key := 0; key < 4; key++ {
		if counters[key] != 50 {
			t.Errorf("expected counter %d to be 50, got %d", key, counters[key])
		}
	}

	if lm.Len() != 0 {
		t.Errorf("expected all keys to be released, got %d", lm.Len())
	}
}

func TestLockMapIndependentKeys(t *testing.T) {
	var lm lockmap.LockMap

	lm.Lock("a")
	done := make(chan struct{})

	go func() {
		lm.Lock("b")
		lm.Unlock("b")
		close(done)
	}()

	<-done

	if lm.Len() != 1 {
		t.Errorf("expected 1 key to be held, got %d", lm.Len())
	}

	lm.Unlock("a")

	if lm.Len() != 0 {
		t.Errorf("expected 0 keys to be held, got %d", lm.Len())
	}
}

func TestLockMapUnlockUnlocked(t *testing.T) {
	var lm lockmap.LockMap

	defer func() {
		if recover() == nil {
			t.Errorf("expected Unlock of an unlocked key to panic")
		}
	}()

	lm.Unlock("a")
}
