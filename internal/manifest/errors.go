package manifest

import "fmt"

// DecodeError reports content that could not be turned into UTF-8 text.
type DecodeError struct {
	ID     string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.ID, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError reports content that is not JSON, or whose root is not an
// object.
type ParseError struct {
	ID     string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse manifest %s: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse manifest %s: %s", e.ID, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFacetError is returned by RequireFacet when a manifest lacks a
// facet the caller depends on.
type MissingFacetError struct {
	ID    string
	Facet string
}

func (e *MissingFacetError) Error() string {
	return fmt.Sprintf("manifest %s has no %s facet", e.ID, e.Facet)
}
