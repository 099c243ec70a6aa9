package events

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	return repo
}

func TestRecordAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.RecordIntrusion(ctx, 0, "Intruder", 82.5, "l.jpg", "u.jpg"))
	require.NoError(t, repo.RecordIntrusion(ctx, 1, "Intruder", 91.0, "l2.jpg", "u2.jpg"))

	got, err := repo.List(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].CameraID, "newest event comes first")
	assert.Equal(t, "Intruder", got[0].Label)
	assert.Equal(t, 91.0, got[0].Confidence)
	assert.Equal(t, "l2.jpg", got[0].LabeledPath)
	assert.Equal(t, "u2.jpg", got[0].UnlabeledPath)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestListRespectsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordIntrusion(ctx, i, "Intruder", 80, "", ""))
	}

	got, err := repo.List(ctx, nil, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListFiltersByDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.RecordIntrusion(ctx, 0, "Intruder", 80, "", ""))

	today := time.Now()
	got, err := repo.List(ctx, &today, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	yesterday := today.AddDate(0, 0, -1)
	got, err = repo.List(ctx, &yesterday, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
