package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// inflightRegistry tracks which users currently have a check-in or
// check-out mutation in flight. A second mutation for the same user is
// rejected, not queued, so two racing taps can never interleave writes.
type inflightRegistry struct {
	mu    sync.Mutex
	users map[uuid.UUID]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{
		users: make(map[uuid.UUID]struct{}),
	}
}

// begin reports whether the caller acquired the user's slot.
func (r *inflightRegistry) begin(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.users[userID]; busy {
		return false
	}
	r.users[userID] = struct{}{}
	return true
}

func (r *inflightRegistry) end(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, userID)
}
