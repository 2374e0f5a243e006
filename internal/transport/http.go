package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTP fetches identifiers that are http(s) URLs.
type HTTP struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTP constructs an HTTP transport. A zero timeout leaves requests
// bounded only by the caller's context; a zero maxBytes disables the
// response size limit.
func NewHTTP(timeout time.Duration, maxBytes int64) *HTTP {
	return &HTTP{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch implements Transport.
func (t *HTTP) Fetch(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, &Error{ID: id, Description: "invalid request URL", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{ID: id, Code: CodeUnavailable, Description: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if t.maxBytes > 0 {
		r = io.LimitReader(resp.Body, t.maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{ID: id, Code: CodeUnavailable, Description: "cannot read response body", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		desc := strings.TrimSpace(string(body))
		if len(desc) > 200 {
			desc = desc[:200]
		}
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{ID: id, Code: resp.StatusCode, Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, desc)}
	}
	if t.maxBytes > 0 && int64(len(body)) > t.maxBytes {
		return nil, &Error{ID: id, Code: CodeTooLarge, Description: fmt.Sprintf("response exceeds %d bytes", t.maxBytes)}
	}
	return body, nil
}
