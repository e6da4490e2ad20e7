package memory

import (
	"context"
	"sort"
	"sync"

	"blockrover/internal/domain"
	"blockrover/internal/storage"
)

// SessionStore is an in-memory implementation of storage.SessionStore.
type SessionStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.SessionRecord
	byAddress map[domain.ContractAddress][]*domain.SessionRecord
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:      make(map[string]*domain.SessionRecord),
		byAddress: make(map[domain.ContractAddress][]*domain.SessionRecord),
	}
}

// Insert archives a finished session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Insert(_ context.Context, r *domain.SessionRecord) error {
	if r == nil || r.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.SessionID]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *r
	s.byID[r.SessionID] = &recCopy
	s.byAddress[r.Address] = append(s.byAddress[r.Address], &recCopy)
	return nil
}

// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(_ context.Context, sessionID string) (*domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.byID[sessionID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	recCopy := *r
	return &recCopy, nil
}

// GetLatestByAddress retrieves the most recently finished session for a contract.
func (s *SessionStore) GetLatestByAddress(_ context.Context, addr domain.ContractAddress) (*domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byAddress[addr]
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := records[0]
	for _, r := range records[1:] {
		if r.FinishedAt > latest.FinishedAt {
			latest = r
		}
	}
	recCopy := *latest
	return &recCopy, nil
}

// ListRecent retrieves up to limit sessions, newest first.
func (s *SessionStore) ListRecent(_ context.Context, limit int) ([]*domain.SessionRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.SessionRecord, 0, len(s.byID))
	for _, r := range s.byID {
		recCopy := *r
		all = append(all, &recCopy)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].FinishedAt > all[j].FinishedAt
	})

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

var _ storage.SessionStore = (*SessionStore)(nil)
