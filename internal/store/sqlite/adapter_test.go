package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xb0rn3/gitnav/internal/domain"
	"github.com/0xb0rn3/gitnav/internal/store/sqlite"
)

func record(owner, name string) domain.BackupRecord {
	cloned := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.BackupRecord{
		Owner:        owner,
		Name:         name,
		ClonedAt:     cloned,
		LastSyncedAt: cloned.Add(24 * time.Hour),
		SizeKB:       512,
		Language:     "Go",
		Description:  "a repository",
		CloneURL:     "https://github.com/" + owner + "/" + name + ".git",
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should round-trip a record", func(t *testing.T) {
		s, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "meta.db"))
		require.NoError(t, err)
		defer s.Close()

		rec := record("alice", "tools")
		require.NoError(t, s.Put(ctx, rec))

		got, err := s.Get(ctx, "alice", "tools")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Owner)
		assert.Equal(t, "tools", got.Name)
		assert.Equal(t, rec.CloneURL, got.CloneURL)
		assert.True(t, rec.ClonedAt.Equal(got.ClonedAt))
		assert.True(t, rec.LastSyncedAt.Equal(got.LastSyncedAt))
	})

	t.Run("should return nil for an unknown repository", func(t *testing.T) {
		s, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "meta.db"))
		require.NoError(t, err)
		defer s.Close()

		got, err := s.Get(ctx, "alice", "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should replace on a repeated put", func(t *testing.T) {
		s, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "meta.db"))
		require.NoError(t, err)
		defer s.Close()

		rec := record("alice", "tools")
		require.NoError(t, s.Put(ctx, rec))

		rec.SizeKB = 1024
		rec.LastSyncedAt = rec.LastSyncedAt.Add(time.Hour)
		require.NoError(t, s.Put(ctx, rec))

		all, err := s.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 1024, all["alice/tools"].SizeKB)
	})

	t.Run("should persist across reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meta.db")

		s, err := sqlite.NewSQLiteStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, record("alice", "tools")))
		require.NoError(t, s.Close())

		reopened, err := sqlite.NewSQLiteStore(path)
		require.NoError(t, err)
		defer reopened.Close()

		all, err := reopened.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
