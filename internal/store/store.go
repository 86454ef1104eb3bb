// Package store provides a thin bbolt wrapper for atmosense's local state.
//
// It plays the role browser local storage plays for a web widget: a small
// string-keyed side channel holding JSON-encoded lists. No transactions span
// more than one key, and a crash between a state change and its write loses
// that change.
//
// Buckets:
//
//	local: JSON string lists keyed by name (recentSearches, favoriteLocations)
//	_meta: internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Well-known list keys.
const (
	KeyRecentSearches    = "recentSearches"
	KeyFavoriteLocations = "favoriteLocations"
)

// Bucket name constants.
var (
	bucketLocal    = []byte("local")
	bucketInternal = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"local"}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

func openDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}
	return db, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketLocal, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── String Lists ─────────────────────────────────────────────────────────────

// LoadList returns the list stored under key. A missing key is an empty list.
func (s *Store) LoadList(key string) ([]string, error) {
	var items []string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketLocal).Get([]byte(key))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &items)
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// SaveList overwrites the list stored under key.
func (s *Store) SaveList(key string, items []string) error {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocal).Put([]byte(key), data)
	})
}

// AddToList appends item to the list under key unless it is already present.
// Returns true if the list changed.
func (s *Store) AddToList(key, item string) (bool, error) {
	added := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLocal)
		var items []string
		if v := b.Get([]byte(key)); v != nil {
			if err := json.Unmarshal(v, &items); err != nil {
				return err
			}
		}
		for _, it := range items {
			if it == item {
				return nil
			}
		}
		items = append(items, item)
		data, err := json.Marshal(items)
		if err != nil {
			return err
		}
		added = true
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", key, err)
	}
	return added, nil
}

// RemoveFromList deletes every occurrence of item from the list under key.
// Returns true if the list changed.
func (s *Store) RemoveFromList(key, item string) (bool, error) {
	removed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLocal)
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		var items []string
		if err := json.Unmarshal(v, &items); err != nil {
			return err
		}
		kept := make([]string, 0, len(items))
		for _, it := range items {
			if it == item {
				removed = true
				continue
			}
			kept = append(kept, it)
		}
		if !removed {
			return nil
		}
		data, err := json.Marshal(kept)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", key, err)
	}
	return removed, nil
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all buckets.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			var count int
			var bytes int64
			if err := b.ForEach(func(k, v []byte) error {
				count++
				bytes += int64(len(k) + len(v))
				return nil
			}); err != nil {
				return err
			}
			stats = append(stats, BucketStats{Name: name, Count: count, Bytes: bytes})
		}
		return nil
	})
	return stats, err
}

// ClearBucket deletes all entries in the named bucket.
func (s *Store) ClearBucket(name string) error {
	if !isUserBucket(name) {
		return fmt.Errorf("unknown bucket %q", name)
	}
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}

// Compact rewrites the database into a fresh file and swaps it in place,
// returning the file size before and after. The Store stays usable.
func (s *Store) Compact() (before, after int64, err error) {
	path := s.db.Path()
	before = fileSize(path)

	tmp := path + ".compact"
	_ = os.Remove(tmp)
	dst, err := openDB(tmp)
	if err != nil {
		return before, 0, err
	}
	if err := bolt.Compact(dst, s.db, 1<<20); err != nil {
		dst.Close()
		_ = os.Remove(tmp)
		return before, 0, fmt.Errorf("compacting: %w", err)
	}
	if err := dst.Close(); err != nil {
		return before, 0, err
	}
	if err := s.db.Close(); err != nil {
		return before, 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		// Reopen the original so the handle stays valid.
		if db, reopenErr := openDB(path); reopenErr == nil {
			s.db = db
		}
		return before, 0, fmt.Errorf("replacing db: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return before, 0, err
	}
	s.db = db
	return before, fileSize(path), nil
}

func isUserBucket(name string) bool {
	for _, b := range AllBuckets {
		if b == name {
			return true
		}
	}
	return false
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
