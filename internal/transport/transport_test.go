package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_PathForID(t *testing.T) {
	f := NewFile("/content", 0)
	cases := map[string]string{
		"https://example.com/a.json":  "/content/https/example.com/a.json",
		"fuchsia:hello_component":     "/content/fuchsia/hello_component",
		"file:///system/apps/x.json":  "/content/file/system/apps/x.json",
		"https://example.com/../../x": "/content/x",
	}
	for id, want := range cases {
		assert.Equal(t, filepath.FromSlash(want), f.PathForID(id), id)
	}
}

func TestFile_Fetch(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "https", "example.com")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"a":"b"}`), 0o644))

	f := NewFile(root, 0)
	b, err := f.Fetch(context.Background(), "https://example.com/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, string(b))

	_, err = f.Fetch(context.Background(), "https://example.com/missing.json")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "https://example.com/missing.json", te.ID)
}

func TestFile_FetchTooLarge(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "big"), []byte(strings.Repeat("x", 32)), 0o644))

	_, err := NewFile(root, 16).Fetch(context.Background(), "big")
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeTooLarge, te.Code)
}

func TestFile_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFile(t.TempDir(), 0).Fetch(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTP_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			_, _ = w.Write([]byte(`{"fuchsia:component":{"name":"ok"}}`))
		case "/big.json":
			_, _ = w.Write([]byte(strings.Repeat(" ", 64)))
		default:
			http.Error(w, "no such component", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tr := NewHTTP(5*time.Second, 32)

	b, err := tr.Fetch(context.Background(), srv.URL+"/ok.json")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ok"`)

	_, err = tr.Fetch(context.Background(), srv.URL+"/nope.json")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "no such component")

	_, err = tr.Fetch(context.Background(), srv.URL+"/big.json")
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeTooLarge, te.Code)
}

func TestRouter_DispatchesOnScheme(t *testing.T) {
	var got []string
	record := func(name string) Transport {
		return Func(func(_ context.Context, id string) ([]byte, error) {
			got = append(got, name+":"+id)
			return nil, nil
		})
	}
	r := &Router{
		Schemes: map[string]Transport{"https": record("web")},
		Default: record("local"),
	}
	_, _ = r.Fetch(context.Background(), "https://example.com/a")
	_, _ = r.Fetch(context.Background(), "HTTPS://example.com/b")
	_, _ = r.Fetch(context.Background(), "fuchsia:hello")
	assert.Equal(t, []string{
		"web:https://example.com/a",
		"web:HTTPS://example.com/b",
		"local:fuchsia:hello",
	}, got)
}

func TestRouter_NoDefault(t *testing.T) {
	_, err := (&Router{}).Fetch(context.Background(), "x")
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeUnavailable, te.Code)
}
