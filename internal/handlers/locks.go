package handlers

import (
	"sync"

	"github.com/google/uuid"
)

// Per-user mutexes shared by every handler that sequences user-scoped
// writes: simulation state transitions and round numbering. Two concurrent
// requests for the same user serialize here; different users never contend.
var userLocks sync.Map

func lockUser(userID uuid.UUID) *sync.Mutex {
	mu, _ := userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
