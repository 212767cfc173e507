package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/0xb0rn3/gitnav/internal/domain"
	"github.com/0xb0rn3/gitnav/internal/store"
)

// sqliteStore implements the Store interface for SQLite. It is the backend
// for backup roots large enough that rewriting a JSON document on every
// clone stops being cheap.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(dbPath string) (store.Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS backup_records (
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		cloned_at TIMESTAMP NOT NULL,
		last_synced_at TIMESTAMP NOT NULL,
		size_kb INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		clone_url TEXT NOT NULL,
		PRIMARY KEY (owner, name)
	);

	CREATE INDEX IF NOT EXISTS idx_backup_records_owner ON backup_records(owner);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Get returns the record for owner/name, or nil if none exists.
func (s *sqliteStore) Get(ctx context.Context, owner, name string) (*domain.BackupRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT cloned_at, last_synced_at, size_kb, language, description, clone_url
		FROM backup_records
		WHERE owner = ? AND name = ?
	`, owner, name)

	rec := domain.BackupRecord{Owner: owner, Name: name}
	var clonedAt, syncedAt string
	err := row.Scan(&clonedAt, &syncedAt, &rec.SizeKB, &rec.Language, &rec.Description, &rec.CloneURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if rec.ClonedAt, err = time.Parse(time.RFC3339, clonedAt); err != nil {
		return nil, err
	}
	if rec.LastSyncedAt, err = time.Parse(time.RFC3339, syncedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put creates or replaces the record
func (s *sqliteStore) Put(ctx context.Context, record domain.BackupRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backup_records (owner, name, cloned_at, last_synced_at, size_kb, language, description, clone_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner, name) DO UPDATE SET
			cloned_at = excluded.cloned_at,
			last_synced_at = excluded.last_synced_at,
			size_kb = excluded.size_kb,
			language = excluded.language,
			description = excluded.description,
			clone_url = excluded.clone_url
	`,
		record.Owner, record.Name,
		record.ClonedAt.UTC().Format(time.RFC3339),
		record.LastSyncedAt.UTC().Format(time.RFC3339),
		record.SizeKB, record.Language, record.Description, record.CloneURL,
	)
	return err
}

// All returns every record keyed by "<owner>/<name>".
func (s *sqliteStore) All(ctx context.Context) (map[string]domain.BackupRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, name, cloned_at, last_synced_at, size_kb, language, description, clone_url
		FROM backup_records
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.BackupRecord)
	for rows.Next() {
		var rec domain.BackupRecord
		var clonedAt, syncedAt string
		if err := rows.Scan(&rec.Owner, &rec.Name, &clonedAt, &syncedAt,
			&rec.SizeKB, &rec.Language, &rec.Description, &rec.CloneURL); err != nil {
			return nil, err
		}
		if rec.ClonedAt, err = time.Parse(time.RFC3339, clonedAt); err != nil {
			return nil, err
		}
		if rec.LastSyncedAt, err = time.Parse(time.RFC3339, syncedAt); err != nil {
			return nil, err
		}
		out[rec.Key()] = rec
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
