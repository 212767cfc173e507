package backup_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xb0rn3/gitnav/internal/backup"
	"github.com/0xb0rn3/gitnav/internal/domain"
	"github.com/0xb0rn3/gitnav/internal/gitexec"
	"github.com/0xb0rn3/gitnav/internal/inventory"
)

// fakeExec stands in for the git executor. A successful clone lays down the
// marker directory so a follow-up classification sees the repository as
// cloned, mirroring what the real executor leaves on disk.
type fakeExec struct {
	mu       sync.Mutex
	cloned   []string
	updated  []string
	failWith map[string]domain.Outcome
}

func (f *fakeExec) Clone(_ context.Context, _, destPath string, _ gitexec.ProgressFunc) domain.Outcome {
	name := filepath.Base(destPath)
	f.mu.Lock()
	f.cloned = append(f.cloned, name)
	f.mu.Unlock()

	if out, ok := f.failWith[name]; ok {
		return out
	}
	if err := os.MkdirAll(filepath.Join(destPath, ".git"), 0o755); err != nil {
		return domain.Outcome{Kind: domain.OutcomeCloneFailed, Reason: err.Error()}
	}
	return domain.Outcome{Kind: domain.OutcomeCloned}
}

func (f *fakeExec) Update(_ context.Context, localPath string) domain.Outcome {
	name := filepath.Base(localPath)
	f.mu.Lock()
	f.updated = append(f.updated, name)
	f.mu.Unlock()

	if out, ok := f.failWith[name]; ok {
		return out
	}
	return domain.Outcome{Kind: domain.OutcomeUpdated}
}

func (f *fakeExec) calls() (cloned, updated []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cloned...), append([]string(nil), f.updated...)
}

type fixture struct {
	orch  *backup.Orchestrator
	exec  *fakeExec
	store *memStore
	out   *bytes.Buffer
}

func newFixture(t *testing.T, base string, opts backup.Options) *fixture {
	t.Helper()
	f := &fixture{
		exec:  &fakeExec{failWith: map[string]domain.Outcome{}},
		store: newMemStore(),
		out:   &bytes.Buffer{},
	}
	opts.Out = f.out
	inv := inventory.New(base)
	d := backup.NewDispatcher(inv, f.store, 2)
	f.orch = backup.NewOrchestrator(d, f.exec, inv, opts)
	return f
}

func confirmAll(string) bool  { return true }
func confirmNone(string) bool { return false }

func TestFullBackup(t *testing.T) {
	ctx := context.Background()
	remote := []domain.Repository{repo("alice", "tools"), repo("alice", "dotfiles")}

	t.Run("should clone everything after confirmation", func(t *testing.T) {
		f := newFixture(t, t.TempDir(), backup.Options{Confirm: confirmAll})

		result, err := f.orch.FullBackup(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, result.State)
		require.NotNil(t, result.CloneSummary)
		assert.Equal(t, 2, result.CloneSummary.Succeeded)

		cloned, _ := f.exec.calls()
		assert.ElementsMatch(t, []string{"tools", "dotfiles"}, cloned)

		all, err := f.store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("should do nothing when cancelled", func(t *testing.T) {
		f := newFixture(t, t.TempDir(), backup.Options{Confirm: confirmNone})

		result, err := f.orch.FullBackup(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, domain.RunCancelled, result.State)
		assert.Nil(t, result.CloneSummary)

		cloned, updated := f.exec.calls()
		assert.Empty(t, cloned)
		assert.Empty(t, updated)

		all, err := f.store.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("should not prompt when there is nothing to do", func(t *testing.T) {
		prompted := false
		f := newFixture(t, t.TempDir(), backup.Options{Confirm: func(string) bool {
			prompted = true
			return true
		}})

		result, err := f.orch.FullBackup(ctx, "alice", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.RunEmpty, result.State)
		assert.False(t, prompted)
		assert.Contains(t, f.out.String(), "Nothing to back up")
	})

	t.Run("should update existing clones only after the second confirmation", func(t *testing.T) {
		base := t.TempDir()
		mkClone(t, base, "alice", "tools")

		answers := []bool{true, false} // back up: yes, also update: no
		f := newFixture(t, base, backup.Options{Confirm: func(string) bool {
			a := answers[0]
			answers = answers[1:]
			return a
		}})

		result, err := f.orch.FullBackup(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, result.State)
		assert.Nil(t, result.UpdateSummary)

		cloned, updated := f.exec.calls()
		assert.Equal(t, []string{"dotfiles"}, cloned)
		assert.Empty(t, updated)
	})

	t.Run("should report a failed clone without recording it", func(t *testing.T) {
		f := newFixture(t, t.TempDir(), backup.Options{Confirm: confirmAll})
		f.exec.failWith["tools"] = domain.Outcome{Kind: domain.OutcomeCloneFailed, Reason: "remote hung up"}

		result, err := f.orch.FullBackup(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, result.State)
		require.NotNil(t, result.CloneSummary)
		assert.Equal(t, 1, result.CloneSummary.Failed)

		all, err := f.store.All(ctx)
		require.NoError(t, err)
		_, ok := all["alice/tools"]
		assert.False(t, ok)

		assert.Contains(t, f.out.String(), "failed: tools (remote hung up)")
	})

}

func TestSync(t *testing.T) {
	ctx := context.Background()
	remote := []domain.Repository{repo("alice", "tools"), repo("alice", "dotfiles")}

	t.Run("should clone missing and update existing repositories", func(t *testing.T) {
		base := t.TempDir()
		mkClone(t, base, "alice", "tools")
		f := newFixture(t, base, backup.Options{Confirm: confirmAll})

		result, err := f.orch.Sync(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, domain.RunCompleted, result.State)

		cloned, updated := f.exec.calls()
		assert.Equal(t, []string{"dotfiles"}, cloned)
		assert.Equal(t, []string{"tools"}, updated)
	})

	t.Run("should be idempotent: a second run has nothing to clone", func(t *testing.T) {
		base := t.TempDir()
		f := newFixture(t, base, backup.Options{Confirm: confirmAll})

		first, err := f.orch.Sync(ctx, "alice", remote)
		require.NoError(t, err)
		assert.Len(t, first.Classification.ToClone, 2)

		second, err := f.orch.Sync(ctx, "alice", remote)
		require.NoError(t, err)
		assert.Empty(t, second.Classification.ToClone)
		assert.Len(t, second.Classification.ToUpdate, 2)
	})

	t.Run("should name orphans but never touch them", func(t *testing.T) {
		base := t.TempDir()
		mkClone(t, base, "alice", "retired")
		f := newFixture(t, base, backup.Options{Confirm: confirmAll})

		result, err := f.orch.Sync(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, []string{"retired"}, result.Classification.Orphaned)
		assert.Contains(t, f.out.String(), "retired")
		assert.DirExists(t, filepath.Join(base, "alice", "retired", ".git"))

		_, updated := f.exec.calls()
		assert.NotContains(t, updated, "retired")
	})

	t.Run("should report the plan even when there is nothing to do", func(t *testing.T) {
		base := t.TempDir()
		mkClone(t, base, "alice", "retired")
		f := newFixture(t, base, backup.Options{Confirm: confirmNone})

		result, err := f.orch.Sync(ctx, "alice", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.RunEmpty, result.State)
		assert.Contains(t, f.out.String(), "retired")
	})

	t.Run("should do nothing when cancelled", func(t *testing.T) {
		f := newFixture(t, t.TempDir(), backup.Options{Confirm: confirmNone})

		result, err := f.orch.Sync(ctx, "alice", remote)

		require.NoError(t, err)
		assert.Equal(t, domain.RunCancelled, result.State)

		cloned, updated := f.exec.calls()
		assert.Empty(t, cloned)
		assert.Empty(t, updated)
	})
}
