package domain

import (
	"strings"
	"time"
)

// Repository describes a remote repository as reported by the directory
// provider. The backup core treats it as read-only input.
type Repository struct {
	Owner       string
	Name        string
	FullName    string
	Description string
	CloneURL    string
	HTMLURL     string
	SizeKB      int
	Language    string
	IsPrivate   bool
	Stars       int
	Forks       int
	UpdatedAt   *time.Time
}

// Key returns the metadata-store key for a repository, "<owner>/<name>".
func (r Repository) Key() string {
	return Key(r.Owner, r.Name)
}

// Key builds the canonical "<owner>/<name>" store key.
func Key(owner, name string) string {
	return owner + "/" + name
}

// BackupRecord is the durable per-repository backup state. Records are
// created on the first successful clone and refreshed on each successful
// update; they are never deleted automatically, so a repository that
// disappears from the remote listing keeps its record.
//
// Owner and Name live in the store key, not in the persisted document,
// which holds exactly the fields below with ISO-8601 timestamps.
type BackupRecord struct {
	Owner        string    `json:"-"`
	Name         string    `json:"-"`
	ClonedAt     time.Time `json:"cloned_at"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	SizeKB       int       `json:"size_kb"`
	Language     string    `json:"language"`
	Description  string    `json:"description"`
	CloneURL     string    `json:"clone_url"`
}

// Key returns the store key for the record.
func (r BackupRecord) Key() string {
	return Key(r.Owner, r.Name)
}

// NewBackupRecord builds the record written after a first successful clone.
func NewBackupRecord(repo Repository, now time.Time) BackupRecord {
	return BackupRecord{
		Owner:        repo.Owner,
		Name:         repo.Name,
		ClonedAt:     now,
		LastSyncedAt: now,
		SizeKB:       repo.SizeKB,
		Language:     repo.Language,
		Description:  repo.Description,
		CloneURL:     repo.CloneURL,
	}
}

// Refreshed returns a copy of the record updated after a successful pull.
// Only the sync timestamp and the size are touched.
func (r BackupRecord) Refreshed(repo Repository, now time.Time) BackupRecord {
	r.LastSyncedAt = now
	if repo.SizeKB > 0 {
		r.SizeKB = repo.SizeKB
	}
	return r
}

// FilterRepositories returns the repositories whose name, description or
// language contains term, case-insensitively.
func FilterRepositories(repos []Repository, term string) []Repository {
	term = strings.ToLower(term)
	var matches []Repository
	for _, repo := range repos {
		if strings.Contains(strings.ToLower(repo.Name), term) ||
			strings.Contains(strings.ToLower(repo.Description), term) ||
			strings.Contains(strings.ToLower(repo.Language), term) {
			matches = append(matches, repo)
		}
	}
	return matches
}

// Profile holds the owner profile fields shown by the profile command.
type Profile struct {
	Login       string
	Name        string
	Bio         string
	Company     string
	Location    string
	Blog        string
	PublicRepos int
	Followers   int
	Following   int
	CreatedAt   time.Time
}
