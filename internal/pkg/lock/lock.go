package lock

import "sync"

// Manager hands out one mutex per key so callers can serialize work on a
// single resource (a reward, a student balance) without a global lock.
// Mutexes are created lazily and kept for the lifetime of the manager.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates an empty keyed lock manager
func NewManager() *Manager {
	return &Manager{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex for key, creating it on first use.
// The caller is responsible for Lock/Unlock.
func (m *Manager) Get(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.locks[key]; !exists {
		m.locks[key] = &sync.Mutex{}
	}
	return m.locks[key]
}
