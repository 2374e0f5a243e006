package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	dir := withHome(t)

	cfg, err := LoadFile(filepath.Join(dir, "cindex.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.IndexPath != filepath.Join(dir, "components", "index.json") {
		t.Fatalf("unexpected index path %q", cfg.IndexPath)
	}
	if cfg.ContentRoot != filepath.Join(dir, "content") {
		t.Fatalf("unexpected content root %q", cfg.ContentRoot)
	}
	if cfg.MaxManifestBytes != defaultMaxManifestBytes {
		t.Fatalf("unexpected max bytes %d", cfg.MaxManifestBytes)
	}
	if cfg.Tracing.Enabled {
		t.Fatal("tracing must be off by default")
	}
}

func TestLoadFile_YAMLAndEnvOverride(t *testing.T) {
	dir := withHome(t)
	home := filepath.Dir(dir)
	path := filepath.Join(dir, "cindex.yaml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "index_path: ~/idx.json\ncontent_root: /srv/content\nconcurrency: 4\nhttp_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CINDEX_CONTENT_ROOT", "/override")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.IndexPath != filepath.Join(home, "idx.json") {
		t.Fatalf("expected ~ expansion, got %q", cfg.IndexPath)
	}
	if cfg.ContentRoot != "/override" {
		t.Fatalf("expected env override, got %q", cfg.ContentRoot)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("unexpected concurrency %d", cfg.Concurrency)
	}
	d, err := cfg.EffectiveHTTPTimeout()
	if err != nil || d != 5*time.Second {
		t.Fatalf("unexpected timeout %v (%v)", d, err)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"yaml":        "index_path: [",
		"concurrency": "concurrency: -1\n",
		"timeout":     "http_timeout: soon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := withHome(t)
			path := filepath.Join(dir, "cindex.yaml")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("error should name the config file: %v", err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	withHome(t)
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Concurrency = 7
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Concurrency != 7 {
		t.Fatalf("expected saved concurrency, got %d", got.Concurrency)
	}
}
