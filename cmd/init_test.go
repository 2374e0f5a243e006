package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kamusis/cindex-cli/internal/catalog"
	"github.com/kamusis/cindex-cli/internal/config"
)

func TestRunInit_CreatesWorkspace(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CINDEX_INDEX_PATH", "")
	t.Setenv("CINDEX_CONTENT_ROOT", "")
	dir := filepath.Join(home, ".cindex")

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	for _, p := range []string{
		filepath.Join(dir, "cindex.yaml"),
		filepath.Join(dir, ".env"),
		filepath.Join(dir, "content"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
	idx := filepath.Join(dir, "components", "index.json")
	c, err := catalog.Load(idx)
	if err != nil || c.Len() != 0 {
		t.Fatalf("expected empty index at %s: %v", idx, err)
	}

	// A second run keeps user edits.
	if _, err := catalog.Add(idx, "fuchsia:hello"); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Concurrency = 3
	if err := config.Save(cfg); err != nil {
		t.Fatal(err)
	}
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("second runInit: %v", err)
	}
	if c, _ := catalog.Load(idx); c.Len() != 1 {
		t.Fatalf("init reset the index: %v", c.IDs())
	}
	if cfg, _ := config.Load(); cfg.Concurrency != 3 {
		t.Fatalf("init overwrote the config: concurrency=%d", cfg.Concurrency)
	}
}
