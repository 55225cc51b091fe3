package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minish-sh/minish/core/history"
)

func newRepo(t *testing.T) *history.Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	repo, err := history.NewRepository(context.Background(), history.RepositoryConfig{
		DBPath: dbPath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, repo.Close()) })

	return repo
}

func TestNewRepositoryValidation(t *testing.T) {
	_, err := history.NewRepository(context.Background(), history.RepositoryConfig{})
	assert.EqualError(t, err, "invalid config: db path is required")
}

func TestNewRepositoryReopens(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	repo, err := history.NewRepository(ctx, history.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	_, err = repo.AddEntry(ctx, history.Entry{SessionID: "s1", Line: "ls", Program: "ls"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// A second open runs the migrations again and must tolerate no-change.
	repo, err = history.NewRepository(ctx, history.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer repo.Close()

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ls", entries[0].Line)
}

func TestAddEntry(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	id, err := repo.AddEntry(ctx, history.Entry{SessionID: "s1", Line: "ls -l", Program: "ls"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = repo.AddEntry(ctx, history.Entry{SessionID: "s1", Line: "sleep 30 &", Program: "sleep", Background: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].ID)
	assert.Equal(t, "ls -l", entries[0].Line)
	assert.Equal(t, "ls", entries[0].Program)
	assert.False(t, entries[0].Background)
	assert.True(t, entries[1].Background)
	assert.WithinDuration(t, time.Now().UTC(), entries[0].RanAt, time.Minute,
		"an unset timestamp is filled at insert time")
}

func TestAddEntryKeepsTimestamps(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	ranAt := time.Unix(1700000000, 0).UTC()
	_, err := repo.AddEntry(ctx, history.Entry{SessionID: "s1", Line: "ls", Program: "ls", RanAt: ranAt})
	require.NoError(t, err)

	entries, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ranAt, entries[0].RanAt)
}

func TestRecent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for _, line := range []string{"one", "two", "three"} {
		_, err := repo.AddEntry(ctx, history.Entry{SessionID: "s1", Line: line, Program: line})
		require.NoError(t, err)
	}

	t.Run("caps at n, oldest first", func(t *testing.T) {
		entries, err := repo.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "two", entries[0].Line)
		assert.Equal(t, "three", entries[1].Line)
	})

	t.Run("asking for more than exists returns everything", func(t *testing.T) {
		entries, err := repo.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}

func TestRecentEmpty(t *testing.T) {
	repo := newRepo(t)

	entries, err := repo.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBySession(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for _, e := range []history.Entry{
		{SessionID: "s1", Line: "ls", Program: "ls"},
		{SessionID: "s2", Line: "pwd", Program: "pwd"},
		{SessionID: "s1", Line: "cd /tmp", Program: "cd"},
	} {
		_, err := repo.AddEntry(ctx, e)
		require.NoError(t, err)
	}

	t.Run("filters to one session", func(t *testing.T) {
		entries, err := repo.BySession(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "ls", entries[0].Line)
		assert.Equal(t, "cd /tmp", entries[1].Line)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		_, err := repo.BySession(ctx, "missing")
		assert.True(t, errors.Is(err, history.ErrNotFound))
	})
}
