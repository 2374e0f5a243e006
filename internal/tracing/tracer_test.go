package tracing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(DefaultConfig())
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "x")
	assert.False(t, span.IsRecording())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "traces.jsonl")
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.FilePath = path

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "resolver.FindMatching")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "resolver.FindMatching"))
}

func TestNewProvider_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	_, err := NewProvider(cfg)
	assert.ErrorContains(t, err, "file_path")

	cfg.Exporter = "carrier-pigeon"
	_, err = NewProvider(cfg)
	assert.ErrorContains(t, err, "unsupported tracing exporter")
}
