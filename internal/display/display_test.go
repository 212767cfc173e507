package display_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/0xb0rn3/gitnav/internal/display"
	"github.com/0xb0rn3/gitnav/internal/domain"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{2 * 1024 * 1024 * 1024, "2.0 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.0 TB"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, display.FormatSize(tc.bytes), "size %d", tc.bytes)
	}
}

func TestFormatDate(t *testing.T) {
	t.Run("should render a timestamp to the minute", func(t *testing.T) {
		ts := time.Date(2025, 6, 15, 9, 30, 45, 0, time.UTC)
		assert.Equal(t, "2025-06-15 09:30", display.FormatDate(&ts))
	})

	t.Run("should render nil as never", func(t *testing.T) {
		assert.Equal(t, "never", display.FormatDate(nil))
	})

	t.Run("should render the zero time as never", func(t *testing.T) {
		var zero time.Time
		assert.Equal(t, "never", display.FormatDate(&zero))
	})
}

func TestTopLanguages(t *testing.T) {
	counts := map[string]int{"Go": 5, "Python": 5, "Rust": 2, "Shell": 1}

	t.Run("should order by count with alphabetical ties", func(t *testing.T) {
		assert.Equal(t, []string{"Go", "Python", "Rust", "Shell"}, display.TopLanguages(counts, 10))
	})

	t.Run("should cap the result at n", func(t *testing.T) {
		assert.Equal(t, []string{"Go", "Python"}, display.TopLanguages(counts, 2))
	})

	t.Run("should handle an empty map", func(t *testing.T) {
		assert.Empty(t, display.TopLanguages(map[string]int{}, 3))
	})
}

func TestRenderRepositories(t *testing.T) {
	repos := []domain.Repository{
		{Name: "tools", Description: "assorted helpers", Stars: 12, Forks: 3, Language: "Go"},
		{Name: "dotfiles", Stars: 1},
	}

	t.Run("should print a notice for an empty listing", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderRepositories(&buf, nil, false)
		assert.Contains(t, buf.String(), "No repositories found")
	})

	t.Run("should list every repository", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderRepositories(&buf, repos, false)
		out := buf.String()
		assert.Contains(t, out, "tools")
		assert.Contains(t, out, "dotfiles")
		assert.Contains(t, out, "assorted helpers")
	})

	t.Run("should add size and visibility columns in detailed mode", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderRepositories(&buf, repos, true)
		out := buf.String()
		assert.Contains(t, out, "SIZE")
		assert.Contains(t, out, "PRIVATE")
	})
}

func TestRenderBackupStatus(t *testing.T) {
	cloned := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := map[string]domain.BackupRecord{
		"alice/tools": {
			Owner: "alice", Name: "tools",
			ClonedAt: cloned, LastSyncedAt: cloned,
			SizeKB: 2048, Language: "Go",
		},
		"bob/other": {Owner: "bob", Name: "other", ClonedAt: cloned, LastSyncedAt: cloned},
	}

	t.Run("should show only the requested owner's records", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderBackupStatus(&buf, "alice", records)
		out := buf.String()
		assert.Contains(t, out, "tools")
		assert.NotContains(t, out, "other")
		assert.Contains(t, out, "2.0 MB")
	})

	t.Run("should print a notice when the owner has no records", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderBackupStatus(&buf, "carol", records)
		assert.Contains(t, buf.String(), "No backups recorded for carol")
	})
}

func TestRenderReleases(t *testing.T) {
	published := time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC)

	t.Run("should print one row per asset", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderReleases(&buf, "alice/tools", []domain.Release{{
			TagName:     "v1.2.0",
			Name:        "Release 1.2",
			PublishedAt: &published,
			Assets: []domain.ReleaseAsset{
				{Name: "tools-linux-amd64", SizeBytes: 4 * 1024 * 1024, Downloads: 37},
				{Name: "tools-darwin-arm64", SizeBytes: 5 * 1024 * 1024, Downloads: 12},
			},
		}})
		out := buf.String()
		assert.Contains(t, out, "v1.2.0")
		assert.Contains(t, out, "tools-linux-amd64")
		assert.Contains(t, out, "tools-darwin-arm64")
	})

	t.Run("should fall back to the tag when a release is unnamed", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderReleases(&buf, "alice/tools", []domain.Release{{TagName: "v0.1.0"}})
		assert.Contains(t, buf.String(), "v0.1.0")
	})

	t.Run("should print a notice when there are no releases", func(t *testing.T) {
		var buf bytes.Buffer
		display.RenderReleases(&buf, "alice/tools", nil)
		assert.Contains(t, buf.String(), "No releases found for alice/tools")
	})
}
