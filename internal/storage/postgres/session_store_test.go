package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockrover/internal/domain"
	"blockrover/internal/storage"
)

func makeRecord(id string, addr domain.ContractAddress, finishedAt int64) *domain.SessionRecord {
	return &domain.SessionRecord{
		SessionID:  id,
		Address:    addr,
		Status:     domain.StatusEnded,
		IssueCount: 2,
		Report:     "report text",
		StartedAt:  finishedAt - 10_000,
		FinishedAt: finishedAt,
	}
}

func TestSessionStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	rec := makeRecord("sess-001", "0xaaaa", 1700000000000)
	require.NoError(t, store.Insert(ctx, rec))

	retrieved, err := store.GetByID(ctx, "sess-001")
	require.NoError(t, err)

	assert.Equal(t, rec.SessionID, retrieved.SessionID)
	assert.Equal(t, rec.Address, retrieved.Address)
	assert.Equal(t, rec.Status, retrieved.Status)
	assert.Equal(t, rec.IssueCount, retrieved.IssueCount)
	assert.Equal(t, rec.Report, retrieved.Report)
	assert.Equal(t, rec.StartedAt, retrieved.StartedAt)
	assert.Equal(t, rec.FinishedAt, retrieved.FinishedAt)
	assert.NotZero(t, retrieved.CreatedAt)
}

func TestSessionStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	rec := makeRecord("sess-dup", "0xaaaa", 1700000000000)
	require.NoError(t, store.Insert(ctx, rec))

	err := store.Insert(ctx, rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSessionStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.SessionRecord{}), storage.ErrInvalidInput)
}

func TestSessionStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	_, err := store.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_GetLatestByAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, makeRecord("sess-1", "0xaaaa", 1000)))
	require.NoError(t, store.Insert(ctx, makeRecord("sess-2", "0xaaaa", 3000)))
	require.NoError(t, store.Insert(ctx, makeRecord("sess-3", "0xaaaa", 2000)))
	require.NoError(t, store.Insert(ctx, makeRecord("sess-4", "0xbbbb", 9000)))

	got, err := store.GetLatestByAddress(ctx, "0xaaaa")
	require.NoError(t, err)
	assert.Equal(t, "sess-2", got.SessionID)

	_, err = store.GetLatestByAddress(ctx, "0xcccc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_ListRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, makeRecord("sess-1", "0xaaaa", 1000)))
	require.NoError(t, store.Insert(ctx, makeRecord("sess-2", "0xbbbb", 3000)))
	require.NoError(t, store.Insert(ctx, makeRecord("sess-3", "0xcccc", 2000)))

	got, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sess-2", got[0].SessionID)
	assert.Equal(t, "sess-3", got[1].SessionID)

	_, err = store.ListRecent(ctx, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
