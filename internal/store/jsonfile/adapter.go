package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/0xb0rn3/gitnav/internal/domain"
	apperrors "github.com/0xb0rn3/gitnav/internal/errors"
	"github.com/0xb0rn3/gitnav/internal/store"
)

// jsonStore implements the Store interface on a single JSON document
// mapping "<owner>/<name>" to a backup record.
type jsonStore struct {
	mu      sync.Mutex
	path    string
	records map[string]domain.BackupRecord
}

// NewJSONStore creates a store backed by the document at path. A missing or
// unreadable document is not fatal: the store starts empty and the condition
// is logged as a warning.
func NewJSONStore(path string) (store.Store, error) {
	s := &jsonStore{
		path:    path,
		records: make(map[string]domain.BackupRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("metadata document %s unreadable, starting empty: %v", path, err)
		}
		return s, nil
	}

	var raw map[string]domain.BackupRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warnf("%v, starting empty", apperrors.NewMetadataCorruptError(path, err))
		return s, nil
	}

	for key, rec := range raw {
		owner, name, ok := splitKey(key)
		if !ok {
			logger.Warnf("metadata document %s: skipping malformed key %q", path, key)
			continue
		}
		rec.Owner = owner
		rec.Name = name
		s.records[key] = rec
	}

	return s, nil
}

// Get returns the record for owner/name, or nil if none exists.
func (s *jsonStore) Get(_ context.Context, owner, name string) (*domain.BackupRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[domain.Key(owner, name)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Put creates or replaces the record and rewrites the document.
func (s *jsonStore) Put(_ context.Context, record domain.BackupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Key()] = record
	return s.save()
}

// All returns a copy of every record keyed by "<owner>/<name>".
func (s *jsonStore) All(_ context.Context) (map[string]domain.BackupRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.BackupRecord, len(s.records))
	for key, rec := range s.records {
		out[key] = rec
	}
	return out, nil
}

func (s *jsonStore) Close() error {
	return nil
}

// save overwrites the whole document. Not transactional: the write is kept
// fast by keeping the document small, and a torn write is recovered on the
// next load by treating the document as empty.
func (s *jsonStore) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewMetadataWriteError(s.path, err)
		}
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return apperrors.NewMetadataWriteError(s.path, err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return apperrors.NewMetadataWriteError(s.path, err)
	}
	return nil
}

func splitKey(key string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(key, "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
