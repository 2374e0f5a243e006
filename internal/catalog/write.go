package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockTimeout = 10 * time.Second

// Add appends id to the index file at path under an exclusive lock. A
// missing index file is created. It reports false when id was already
// present.
func Add(path, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("component identifier is empty")
	}
	unlock, err := lockIndex(path, true, lockTimeout)
	if err != nil {
		return false, err
	}
	defer unlock()

	c, err := readIndex(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
		c = New()
	}
	if c.Contains(id) {
		return false, nil
	}
	if err := Write(path, New(append(c.IDs(), id)...)); err != nil {
		return false, err
	}
	return true, nil
}

// Init creates an empty index file at path unless one already exists. It
// reports whether a file was created.
func Init(path string) (bool, error) {
	unlock, err := lockIndex(path, true, lockTimeout)
	if err != nil {
		return false, err
	}
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("cannot stat component index %s: %w", path, err)
	}
	if err := Write(path, New()); err != nil {
		return false, err
	}
	return true, nil
}

// Write replaces the index file at path with c. The new content is written
// to a temporary file in the same directory and renamed into place.
// Callers are expected to hold the exclusive index lock.
func Write(path string, c Catalog) error {
	b, err := Encode(c)
	if err != nil {
		return fmt.Errorf("cannot encode component index: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp index: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot install component index %s: %w", path, err)
	}
	return nil
}

// lockIndex takes the lock guarding the index file at path, shared for
// readers and exclusive for writers, polling until timeout. Only writers
// create the index directory.
func lockIndex(path string, exclusive bool, timeout time.Duration) (func(), error) {
	lockPath := path + ".lock"
	if exclusive {
		if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
			return func() {}, fmt.Errorf("cannot create lock dir: %w", err)
		}
	}
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		var locked bool
		var err error
		if exclusive {
			locked, err = l.TryLock()
		} else {
			locked, err = l.TryRLock()
		}
		if err != nil {
			return func() {}, fmt.Errorf("cannot lock component index: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("component index is locked by another process (lock: %s)", lockPath)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
