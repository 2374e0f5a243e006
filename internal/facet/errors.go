package facet

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFilter is returned when a filter asks to compare two lists.
// Array filtering is not implemented; callers must treat it as fatal to the
// query rather than as a mismatch.
var ErrUnsupportedFilter = errors.New("filtering by array not implemented")

// ConversionError reports a JSON value the facet model cannot represent
// (numbers, booleans, null), possibly nested inside an array or object.
type ConversionError struct {
	// Facet is the top-level facet type, when known.
	Facet string
	// Path locates the offending value inside the facet, e.g. "/deps/0".
	Path string
	// Type is the JSON type that was found.
	Type string
}

func (e *ConversionError) Error() string {
	where := e.Path
	if where == "" {
		where = "/"
	}
	if e.Facet != "" {
		return fmt.Sprintf("facet %q: cannot convert JSON %s at %s", e.Facet, e.Type, where)
	}
	return fmt.Sprintf("cannot convert JSON %s at %s", e.Type, where)
}

// UnsupportedFilterError is returned by Matches when both sides are lists.
type UnsupportedFilterError struct {
	Facet string
	Path  string
}

func (e *UnsupportedFilterError) Error() string {
	where := e.Path
	if where == "" {
		where = "/"
	}
	if e.Facet != "" {
		return fmt.Sprintf("facet %q at %s: %v", e.Facet, where, ErrUnsupportedFilter)
	}
	return fmt.Sprintf("at %s: %v", where, ErrUnsupportedFilter)
}

func (e *UnsupportedFilterError) Unwrap() error { return ErrUnsupportedFilter }
