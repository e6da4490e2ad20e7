package memory

import (
	"context"
	"sort"
	"sync"

	"blockrover/internal/domain"
	"blockrover/internal/storage"
)

// StatusEventStore is an in-memory implementation of storage.StatusEventStore.
type StatusEventStore struct {
	mu        sync.RWMutex
	bySession map[string][]*domain.StatusEvent
}

// NewStatusEventStore creates a new in-memory status event store.
func NewStatusEventStore() *StatusEventStore {
	return &StatusEventStore{
		bySession: make(map[string][]*domain.StatusEvent),
	}
}

// Insert appends one observed status transition.
func (s *StatusEventStore) Insert(_ context.Context, ev *domain.StatusEvent) error {
	if ev == nil || ev.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evCopy := *ev
	s.bySession[ev.SessionID] = append(s.bySession[ev.SessionID], &evCopy)
	return nil
}

// GetBySessionID retrieves all events for a session, ordered by observed_at ASC.
func (s *StatusEventStore) GetBySessionID(_ context.Context, sessionID string) ([]*domain.StatusEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.bySession[sessionID]
	out := make([]*domain.StatusEvent, 0, len(events))
	for _, ev := range events {
		evCopy := *ev
		out = append(out, &evCopy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ObservedAt < out[j].ObservedAt
	})
	return out, nil
}

var _ storage.StatusEventStore = (*StatusEventStore)(nil)
