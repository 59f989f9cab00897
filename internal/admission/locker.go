package admission

import "sync"

// Locker hands out one mutex per account so admissions for different
// accounts run in parallel while admissions for the same account serialize.
type Locker struct {
	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

func (l *Locker) get(accountID string) *sync.Mutex {
	l.mu.RLock()
	m, ok := l.locks[accountID]
	l.mu.RUnlock()
	if ok {
		return m
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok = l.locks[accountID]; !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	return m
}

// Lock blocks until the account's mutex is held and returns its release func.
func (l *Locker) Lock(accountID string) (unlock func()) {
	m := l.get(accountID)
	m.Lock()
	return m.Unlock
}
