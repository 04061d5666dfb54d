package memory

import "sync"

// keyedMutex hands out one mutex per key and drops it when nobody holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[dayKey]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[dayKey]*refMutex)}
}

func (k *keyedMutex) Lock(key dayKey) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
}

func (k *keyedMutex) Unlock(key dayKey) {
	k.mu.Lock()
	m := k.locks[key]
	m.refs--
	if m.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	m.Unlock()
}
