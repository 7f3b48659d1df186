// Package cas persists incremental cache entries as one msgpack file per key.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/zerr"
)

// SchemaVersion is bumped whenever the record layout changes. Records of any
// other version are treated as absent.
const SchemaVersion uint16 = 1

const entryExt = ".mp"

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore on the local filesystem.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// record is the persisted form of a domain.CacheEntry.
type record struct {
	Schema      uint16
	Source      string
	Artifact    domain.ArtifactKind
	Target      string
	Fingerprint string
	Package     string
	Output      string
	Imports     []domain.Import
	Members     []domain.Member
}

func toRecord(e *domain.CacheEntry) *record {
	return &record{
		Schema:      SchemaVersion,
		Source:      e.Key.Source.String(),
		Artifact:    e.Key.Artifact,
		Target:      e.Key.Target,
		Fingerprint: e.Fingerprint,
		Package:     e.Unit.Package,
		Output:      e.Unit.Output,
		Imports:     e.Unit.Imports,
		Members:     e.Unit.Members,
	}
}

func (r *record) entry() domain.CacheEntry {
	key := domain.CacheKey{
		Source:   domain.NewSourceID(r.Source),
		Artifact: r.Artifact,
		Target:   r.Target,
	}
	return domain.CacheEntry{
		Key:         key,
		Fingerprint: r.Fingerprint,
		Unit: domain.GeneratedUnit{
			Source:   key.Source,
			Artifact: key.Artifact,
			Target:   key.Target,
			Package:  r.Package,
			Output:   r.Output,
			Imports:  r.Imports,
			Members:  r.Members,
		},
	}
}

// PathFor returns the file holding the entry stored under key.
func PathFor(dir string, key domain.CacheKey) string {
	sum := sha256.Sum256([]byte(key.String()))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+entryExt)
}

// LoadAll decodes every entry under dir, ordered by key. Files that cannot be
// decoded are removed; records of another schema version are skipped.
func (s *Store) LoadAll(dir string) ([]domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(domain.Wrap(err, domain.ErrStoreReadFailed), "dir", dir)
	}

	var entries []domain.CacheEntry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}
		path := filepath.Join(dir, f.Name())

		data, err := os.ReadFile(path) //nolint:gosec // Path is built from the cache dir
		if err != nil {
			return nil, zerr.With(domain.Wrap(err, domain.ErrStoreReadFailed), "path", path)
		}

		var r record
		if err := msgpack.Unmarshal(data, &r); err != nil {
			_ = os.Remove(path)
			continue
		}
		if r.Schema != SchemaVersion {
			continue
		}
		entries = append(entries, r.entry())
	}

	slices.SortFunc(entries, func(a, b domain.CacheEntry) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	return entries, nil
}

// Put encodes entry and moves it into place with a rename.
func (s *Store) Put(dir string, entry *domain.CacheEntry) error {
	data, err := msgpack.Marshal(toRecord(entry))
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrStoreMarshalFailed), "key", entry.Key.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrStoreCreateFailed), "dir", dir)
	}

	path := PathFor(dir, entry.Key)
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrStoreWriteFailed), "path", path)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // Best effort cleanup; fails harmlessly after rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(domain.Wrap(err, domain.ErrStoreWriteFailed), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrStoreWriteFailed), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrStoreWriteFailed), "path", path)
	}
	return nil
}

// Delete removes the entry stored under key.
func (s *Store) Delete(dir string, key domain.CacheKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := PathFor(dir, key)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(domain.Wrap(err, domain.ErrStoreDeleteFailed), "path", path)
	}
	return nil
}
