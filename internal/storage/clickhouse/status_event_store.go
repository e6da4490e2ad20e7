package clickhouse

import (
	"context"
	"fmt"

	"blockrover/internal/domain"
	"blockrover/internal/storage"
)

// StatusEventStore implements storage.StatusEventStore using ClickHouse.
// Status transitions are high-volume append-only analytics data, which is
// what the column store is for.
type StatusEventStore struct {
	conn *Conn
}

// NewStatusEventStore creates a new StatusEventStore.
func NewStatusEventStore(conn *Conn) *StatusEventStore {
	return &StatusEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StatusEventStore = (*StatusEventStore)(nil)

// Insert appends one observed status transition.
func (s *StatusEventStore) Insert(ctx context.Context, ev *domain.StatusEvent) error {
	if ev == nil || ev.SessionID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO status_events (
			session_id, address, status, phase, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		ev.SessionID,
		ev.Address.String(),
		string(ev.Status),
		ev.Phase,
		uint64(ev.ObservedAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySessionID retrieves all events for a session, ordered by observed_at ASC.
func (s *StatusEventStore) GetBySessionID(ctx context.Context, sessionID string) ([]*domain.StatusEvent, error) {
	query := `
		SELECT session_id, address, status, phase, observed_at
		FROM status_events
		WHERE session_id = ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query by session id: %w", err)
	}
	defer rows.Close()

	var events []*domain.StatusEvent
	for rows.Next() {
		var ev domain.StatusEvent
		var address, status string
		var observedAt uint64

		if err := rows.Scan(&ev.SessionID, &address, &status, &ev.Phase, &observedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		ev.Address = domain.ContractAddress(address)
		ev.Status = domain.Status(status)
		ev.ObservedAt = int64(observedAt)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}
	return events, nil
}
