package service

import "sync"

// Locks serializes mutating engine operations per match id while letting
// different matches proceed in parallel. The storage transactions already make
// each single operation atomic; the lock additionally orders whole operations,
// so team generation never reads a roster another call is halfway through
// changing. One Locks instance is shared by all engine services.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocks creates an empty lock registry.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for a match id, creating it on first use.
// Locks are never removed; the per-match footprint is one mutex.
func (m *Locks) get(matchID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[matchID] = l
	}
	return l
}
