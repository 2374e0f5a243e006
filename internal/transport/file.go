package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[:/]+`)

// File serves identifiers from a local directory tree. An identifier maps
// to Root joined with the identifier after every run of ':' and '/' is
// collapsed into a single path separator, so "https://example.com/a.json"
// lives at Root/https/example.com/a.json.
type File struct {
	Root string
	// MaxBytes bounds how much of a file is read. Zero means no limit.
	MaxBytes int64
}

// NewFile returns a File transport rooted at root.
func NewFile(root string, maxBytes int64) *File {
	return &File{Root: root, MaxBytes: maxBytes}
}

// PathForID returns the file that backs id. The result never escapes Root.
func (f *File) PathForID(id string) string {
	rel := separatorRun.ReplaceAllString(id, "/")
	// Clean as an absolute path first so ".." cannot climb above Root.
	rel = filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(f.Root, rel)
}

// Fetch implements Transport.
func (f *File) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{ID: id, Code: CodeUnavailable, Description: "fetch cancelled", Err: err}
	}
	path := f.PathForID(id)
	fh, err := os.Open(path)
	if err != nil {
		return nil, fileError(id, err)
	}
	defer fh.Close()

	var r io.Reader = fh
	if f.MaxBytes > 0 {
		r = io.LimitReader(fh, f.MaxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fileError(id, err)
	}
	if f.MaxBytes > 0 && int64(len(b)) > f.MaxBytes {
		return nil, &Error{ID: id, Code: CodeTooLarge, Description: fmt.Sprintf("content exceeds %d bytes", f.MaxBytes)}
	}
	return b, nil
}

func fileError(id string, err error) error {
	code := CodeUnknown
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		code = CodeForbidden
	}
	desc := err.Error()
	var pe *fs.PathError
	if errors.As(err, &pe) {
		desc = strings.TrimSpace(pe.Err.Error())
	}
	return &Error{ID: id, Code: code, Description: desc, Err: err}
}
