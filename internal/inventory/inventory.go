package inventory

import (
	"os"
	"path/filepath"
)

// markerDir is the filesystem artifact proving a directory is a valid
// checkout. A directory without it is treated as not cloned, even if it
// holds files: it may be a stale partial clone or an unrelated directory,
// and the clone is left to fail loudly on the collision rather than
// silently overwriting anything.
const markerDir = ".git"

// Inventory answers "is this repository already backed up locally" by
// inspecting the filesystem under the backup root. It is deliberately
// independent of the metadata store, which may be stale or missing.
type Inventory struct {
	baseDir string
}

// New creates an inventory rooted at baseDir.
func New(baseDir string) *Inventory {
	return &Inventory{baseDir: baseDir}
}

// ResolvePath returns the local path for a repository: base/owner/name.
// Repository names are unique per owner, so no further disambiguation
// is applied.
func (inv *Inventory) ResolvePath(owner, name string) string {
	return filepath.Join(inv.baseDir, owner, name)
}

// OwnerDir returns the directory holding all of one owner's backups.
func (inv *Inventory) OwnerDir(owner string) string {
	return filepath.Join(inv.baseDir, owner)
}

// IsCloned reports whether the repository's local path exists and contains
// the version-control marker.
func (inv *Inventory) IsCloned(owner, name string) bool {
	return isValidClone(inv.ResolvePath(owner, name))
}

// ListLocal returns the names of the owner's immediate subdirectories that
// pass the marker check. Used for orphan detection.
func (inv *Inventory) ListLocal(owner string) ([]string, error) {
	entries, err := os.ReadDir(inv.OwnerDir(owner))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if isValidClone(filepath.Join(inv.OwnerDir(owner), entry.Name())) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func isValidClone(path string) bool {
	info, err := os.Stat(filepath.Join(path, markerDir))
	return err == nil && info.IsDir()
}
