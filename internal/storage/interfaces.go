package storage

import (
	"context"

	"blockrover/internal/domain"
)

// SessionStore provides access to the audit_sessions archive.
type SessionStore interface {
	// Insert archives a finished session. Returns ErrDuplicateKey if session_id exists.
	Insert(ctx context.Context, r *domain.SessionRecord) error

	// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, sessionID string) (*domain.SessionRecord, error)

	// GetLatestByAddress retrieves the most recently finished session for
	// a contract. Returns ErrNotFound if the contract was never audited.
	GetLatestByAddress(ctx context.Context, addr domain.ContractAddress) (*domain.SessionRecord, error)

	// ListRecent retrieves up to limit sessions, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.SessionRecord, error)
}

// StatusEventStore provides access to status_events analytics storage.
type StatusEventStore interface {
	// Insert appends one observed status transition.
	Insert(ctx context.Context, ev *domain.StatusEvent) error

	// GetBySessionID retrieves all events for a session, ordered by observed_at ASC.
	GetBySessionID(ctx context.Context, sessionID string) ([]*domain.StatusEvent, error)
}
