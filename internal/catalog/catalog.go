// Package catalog holds the list of component identifiers that queries run
// against, and reads and writes the index file that stores it.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrMalformed marks an index file that is not a JSON array of
// non-empty strings.
var ErrMalformed = errors.New("malformed component index")

// Catalog is an ordered, read-only list of component identifiers.
type Catalog struct {
	ids []string
}

// New returns a Catalog holding ids in order.
func New(ids ...string) Catalog {
	cp := make([]string, len(ids))
	copy(cp, ids)
	return Catalog{ids: cp}
}

// IDs returns a copy of the identifiers in catalog order.
func (c Catalog) IDs() []string {
	cp := make([]string, len(c.ids))
	copy(cp, c.ids)
	return cp
}

// Len returns the number of identifiers.
func (c Catalog) Len() int { return len(c.ids) }

// Contains reports whether id is cataloged.
func (c Catalog) Contains(id string) bool {
	for _, x := range c.ids {
		if x == id {
			return true
		}
	}
	return false
}

// Decode parses index file content: a JSON array of identifiers. Comments
// and trailing commas are allowed.
func Decode(data []byte) (Catalog, error) {
	var raw []any
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ids := make([]string, 0, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok || s == "" {
			return Catalog{}, fmt.Errorf("%w: entry %d is not a non-empty string", ErrMalformed, i)
		}
		ids = append(ids, s)
	}
	return Catalog{ids: ids}, nil
}

// Encode renders c in index file form.
func Encode(c Catalog) ([]byte, error) {
	ids := c.ids
	if ids == nil {
		ids = []string{}
	}
	b, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Load reads the index file at path while holding a shared lock on it.
// Any failure is fatal to callers that serve queries. A missing index is
// reported without touching the filesystem.
func Load(path string) (Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return Catalog{}, fmt.Errorf("component index not found: %w", err)
	}
	unlock, err := lockIndex(path, false, lockTimeout)
	if err != nil {
		return Catalog{}, err
	}
	defer unlock()
	return readIndex(path)
}

func readIndex(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("cannot read component index %s: %w", path, err)
	}
	c, err := Decode(b)
	if err != nil {
		return Catalog{}, fmt.Errorf("component index %s: %w", path, err)
	}
	return c, nil
}
