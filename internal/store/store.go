package store

import (
	"context"

	"github.com/0xb0rn3/gitnav/internal/domain"
)

// Store is the abstract interface for backup metadata persistence.
//
// Put is write-through: every successful clone or update lands on disk
// immediately. Implementations must serialize concurrent Puts internally;
// the dispatcher calls Put from multiple workers.
type Store interface {
	// Get returns the record for owner/name, or nil if none exists.
	Get(ctx context.Context, owner, name string) (*domain.BackupRecord, error)

	// Put creates or replaces the record and persists the store.
	Put(ctx context.Context, record domain.BackupRecord) error

	// All returns every record keyed by "<owner>/<name>".
	All(ctx context.Context) (map[string]domain.BackupRecord, error)

	// Connection management
	Close() error
}
