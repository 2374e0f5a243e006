// Package transport turns component identifiers into raw manifest bytes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Transport fetches the content named by a component identifier.
//
// Implementations must be safe for concurrent use. Failures are reported
// as *Error.
type Transport interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Func adapts a plain function to the Transport interface.
type Func func(ctx context.Context, id string) ([]byte, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, id string) ([]byte, error) {
	return f(ctx, id)
}

// Error codes used by the built-in transports. HTTP responses carry the
// status code of the response instead.
const (
	CodeUnknown     = 0
	CodeNotFound    = 404
	CodeForbidden   = 403
	CodeTooLarge    = 413
	CodeUnavailable = 503
)

// Error is a failed fetch: a code plus a human-readable description.
type Error struct {
	ID          string
	Code        int
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Code != CodeUnknown {
		return fmt.Sprintf("fetch %s: %s (code %d)", e.ID, e.Description, e.Code)
	}
	return fmt.Sprintf("fetch %s: %s", e.ID, e.Description)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a transport error for missing content.
func IsNotFound(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == CodeNotFound
}

// Router dispatches on the identifier's URL scheme. Identifiers without a
// registered scheme go to Default.
type Router struct {
	Schemes map[string]Transport
	Default Transport
}

// Fetch implements Transport.
func (r *Router) Fetch(ctx context.Context, id string) ([]byte, error) {
	if t, ok := r.Schemes[schemeOf(id)]; ok {
		return t.Fetch(ctx, id)
	}
	if r.Default == nil {
		return nil, &Error{ID: id, Code: CodeUnavailable, Description: "no transport for identifier"}
	}
	return r.Default.Fetch(ctx, id)
}

func schemeOf(id string) string {
	u, err := url.Parse(id)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
