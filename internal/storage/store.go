package storage

import (
	"errors"

	"github.com/medipulse/medipulse-backend/internal/models"
)

// Storage errors. A missing session is a normal outcome (stale client id),
// not something to escalate.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Store defines the interface for session storage operations.
type Store interface {
	// Create generates a fresh unguessable session id and initializes the
	// session. It fails only if the entropy source does.
	Create(lang models.Language, stage models.Stage) (*models.Session, error)

	// Get looks up a live session. Returns ErrSessionNotFound for unknown
	// ids and ErrSessionExpired for sessions past their TTL.
	Get(id string) (*models.Session, error)

	// Update applies a mutation to one session under its turn lock.
	Update(id string, fn func(*models.Session)) error

	// Delete removes a session. Deleting an unknown id is a no-op.
	Delete(id string)

	// Count returns the number of stored sessions, expired ones included.
	Count() int

	// Sweep removes every expired session and reports how many went.
	Sweep() int
}
