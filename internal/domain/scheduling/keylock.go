package scheduling

import (
	"sync"

	"github.com/google/uuid"
)

// lockRegistry hands out one mutex per doctor so that call-next and walk-in
// registration serialize per queue while different doctors' queues proceed in
// parallel. Locks are never removed; the registry grows with the number of
// doctors seen, which is bounded and small.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (r *lockRegistry) forDoctor(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}
