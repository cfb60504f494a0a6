// Package filecache stores cached metadata responses as files in a directory,
// one JSON file per key.
//
// Entries never expire. Writes are plain file writes with no locking, so
// concurrent writers of the same key race and the last write wins.
package filecache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hairyhenderson/go-ec2meta/internal"
)

// Ext is the file extension of cache entries.
const Ext = ".json"

// Sentinel errors for cache operations.
var (
	ErrNotWritable = errors.New("filecache: directory is not writable")
	ErrInvalidKey  = errors.New("filecache: key is invalid")
)

// Store is a directory of cache entries.
type Store struct {
	dir string
}

// New returns a Store for dir. The directory must already exist and be
// writable; this is checked by creating and removing a temporary file.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: no directory given", ErrNotWritable)
	}

	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWritable, err)
	}

	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotWritable, dir)
	}

	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWritable, err)
	}

	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return &Store{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+Ext)
}

// ValidateKey checks that key can be used as a file name in the cache
// directory.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || key == "." || !internal.ValidPath(key) {
		return ErrInvalidKey
	}

	if strings.ContainsAny(key, "/\n\r") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}

	return nil
}

// Get returns the content stored for key. Missing, unreadable and invalid
// entries are all misses.
func (s *Store) Get(key string) ([]byte, bool) {
	if ValidateKey(key) != nil {
		return nil, false
	}

	b, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, false
	}

	return b, true
}

// Set stores value under key, replacing any existing entry.
func (s *Store) Set(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := os.WriteFile(s.Path(key), value, 0o600); err != nil {
		return fmt.Errorf("filecache: write %s: %w", key, err)
	}

	return nil
}

// Delete removes the entry for key. Deleting a missing entry is not an error.
func (s *Store) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("filecache: delete %s: %w", key, err)
	}

	return nil
}
