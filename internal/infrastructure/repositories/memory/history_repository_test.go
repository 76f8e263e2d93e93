package memory

import (
	"context"
	"testing"

	"droneview/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepository_LatestRoundTrip(t *testing.T) {
	repo := NewMemoryHistoryRepository(5)
	ctx := context.Background()

	_, err := repo.Latest(ctx, "u-1")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)

	record, err := repo.PutLatest(ctx, "u-1", []byte("frame-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 7, record.Size)

	got, err := repo.Latest(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-1"), got)

	// A second put replaces the latest frame.
	_, err = repo.PutLatest(ctx, "u-1", []byte("frame-2"))
	require.NoError(t, err)

	got, err = repo.Latest(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-2"), got)
}

func TestHistoryRepository_BoundedNewestFirst(t *testing.T) {
	repo := NewMemoryHistoryRepository(3)
	ctx := context.Background()

	var last domain.ImageRecord
	for i := 0; i < 5; i++ {
		var err error
		last, err = repo.PutLatest(ctx, "u-1", []byte{byte(i)})
		require.NoError(t, err)
	}

	records, err := repo.History(ctx, "u-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, last.ID, records[0].ID)

	records, err = repo.History(ctx, "u-1", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestHistoryRepository_Delete(t *testing.T) {
	repo := NewMemoryHistoryRepository(5)
	ctx := context.Background()

	record, err := repo.PutLatest(ctx, "u-1", []byte("frame"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "u-1", record.ID))

	records, err := repo.History(ctx, "u-1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.ErrorIs(t, repo.Delete(ctx, "u-1", record.ID), domain.ErrImageNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u-2", "x"), domain.ErrImageNotFound)
}

func TestHistoryRepository_UsersIsolated(t *testing.T) {
	repo := NewMemoryHistoryRepository(5)
	ctx := context.Background()

	_, err := repo.PutLatest(ctx, "u-1", []byte("one"))
	require.NoError(t, err)

	_, err = repo.Latest(ctx, "u-2")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}
