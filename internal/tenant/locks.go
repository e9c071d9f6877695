package tenant

import "sync"

// Locks is a keyed lock table: one RWMutex per tenant, created on first use
// and never released. Ingestion takes the write lock for the whole
// embed-and-write sequence; queries take the read lock, so reads run
// concurrently with each other but never overlap that tenant's ingestion.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewLocks creates an empty lock table.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.RWMutex)}
}

func (l *Locks) get(name string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.RWMutex{}
		l.locks[name] = m
	}
	return m
}

// Lock acquires the exclusive lock for a tenant.
func (l *Locks) Lock(name string) { l.get(name).Lock() }

// Unlock releases the exclusive lock for a tenant.
func (l *Locks) Unlock(name string) { l.get(name).Unlock() }

// RLock acquires the shared lock for a tenant.
func (l *Locks) RLock(name string) { l.get(name).RLock() }

// RUnlock releases the shared lock for a tenant.
func (l *Locks) RUnlock(name string) { l.get(name).RUnlock() }
