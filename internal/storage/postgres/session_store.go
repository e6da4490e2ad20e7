package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"blockrover/internal/domain"
	"blockrover/internal/storage"
)

// SessionStore implements storage.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

// Insert archives a finished session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Insert(ctx context.Context, r *domain.SessionRecord) error {
	if r == nil || r.SessionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO audit_sessions (
			session_id, address, status, issue_count, report, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.SessionID,
		r.Address.String(),
		string(r.Status),
		r.IssueCount,
		r.Report,
		r.StartedAt,
		r.FinishedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert audit session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (*domain.SessionRecord, error) {
	query := `
		SELECT session_id, address, status, issue_count, report, started_at, finished_at, created_at
		FROM audit_sessions
		WHERE session_id = $1
	`

	row := s.pool.QueryRow(ctx, query, sessionID)
	r, err := scanSessionRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get audit session by id: %w", err)
	}
	return r, nil
}

// GetLatestByAddress retrieves the most recently finished session for a contract.
func (s *SessionStore) GetLatestByAddress(ctx context.Context, addr domain.ContractAddress) (*domain.SessionRecord, error) {
	query := `
		SELECT session_id, address, status, issue_count, report, started_at, finished_at, created_at
		FROM audit_sessions
		WHERE address = $1
		ORDER BY finished_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, addr.String())
	r, err := scanSessionRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest audit session by address: %w", err)
	}
	return r, nil
}

// ListRecent retrieves up to limit sessions, newest first.
func (s *SessionStore) ListRecent(ctx context.Context, limit int) ([]*domain.SessionRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT session_id, address, status, issue_count, report, started_at, finished_at, created_at
		FROM audit_sessions
		ORDER BY finished_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit sessions: %w", err)
	}
	defer rows.Close()

	var records []*domain.SessionRecord
	for rows.Next() {
		r, err := scanSessionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit session: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit sessions: %w", err)
	}
	return records, nil
}

// scanSessionRecord scans a single row into SessionRecord.
func scanSessionRecord(row pgx.Row) (*domain.SessionRecord, error) {
	var r domain.SessionRecord
	var address, status string

	err := row.Scan(
		&r.SessionID,
		&address,
		&status,
		&r.IssueCount,
		&r.Report,
		&r.StartedAt,
		&r.FinishedAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Address = domain.ContractAddress(address)
	r.Status = domain.Status(status)
	return &r, nil
}
