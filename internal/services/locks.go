package services

import "sync"

// keyedMutex serializes read-modify-write cycles per record key so that
// back-to-back updates for the same skill or sentence can never lose a
// write. Mutexes are created on demand and retained; the key space is the
// catalog, which is small and bounded.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
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
