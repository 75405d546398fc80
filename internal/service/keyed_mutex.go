package service

import "sync"

// keyedMutex hands out one mutex per key and drops it once nobody holds or
// waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lk, ok := k.locks[key]
	if !ok {
		lk = &refMutex{}
		k.locks[key] = lk
	}
	lk.refs++
	k.mu.Unlock()

	lk.Lock()

	return func() {
		lk.Unlock()

		k.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
