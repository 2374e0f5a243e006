package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kamusis/cindex-cli/internal/tracing"
	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.cindex/cindex.yaml.
type Config struct {
	// IndexPath is the component index: a JSON array of identifiers.
	IndexPath string `yaml:"index_path"`
	// ContentRoot is the directory the local transport serves manifests from.
	ContentRoot string `yaml:"content_root"`
	// MaxManifestBytes bounds fetched and decoded manifest size.
	MaxManifestBytes int64 `yaml:"max_manifest_bytes,omitempty"`
	// Concurrency caps fetches in flight per query; 0 means unbounded.
	Concurrency int `yaml:"concurrency,omitempty"`
	// HTTPTimeout bounds each HTTP fetch, e.g. "30s".
	HTTPTimeout string         `yaml:"http_timeout,omitempty"`
	Tracing     tracing.Config `yaml:"tracing,omitempty"`
}

const (
	defaultMaxManifestBytes = 1 << 20
	defaultHTTPTimeout      = 30 * time.Second
)

// CindexDir returns the absolute path to ~/.cindex/.
func CindexDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cindex"), nil
}

// ConfigPath returns the absolute path to ~/.cindex/cindex.yaml.
func ConfigPath() (string, error) {
	dir, err := CindexDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cindex.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() (*Config, error) {
	dir, err := CindexDir()
	if err != nil {
		return nil, err
	}
	tc := tracing.DefaultConfig()
	tc.FilePath = filepath.Join(dir, "traces", "traces.jsonl")
	return &Config{
		IndexPath:        filepath.Join(dir, "components", "index.json"),
		ContentRoot:      filepath.Join(dir, "content"),
		MaxManifestBytes: defaultMaxManifestBytes,
		Concurrency:      0,
		HTTPTimeout:      defaultHTTPTimeout.String(),
		Tracing:          tc,
	}, nil
}

// Load reads ~/.cindex/cindex.yaml, falling back to DefaultConfig when the
// file does not exist. CINDEX_INDEX_PATH and CINDEX_CONTENT_ROOT override
// the file.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit config path.
func LoadFile(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if v, err := GetConfigValue("CINDEX_INDEX_PATH"); err != nil {
		return nil, err
	} else if v != "" {
		cfg.IndexPath = v
	}
	if v, err := GetConfigValue("CINDEX_CONTENT_ROOT"); err != nil {
		return nil, err
	} else if v != "" {
		cfg.ContentRoot = v
	}

	// Expand ~ at load time.
	if cfg.IndexPath, err = ExpandPath(cfg.IndexPath); err != nil {
		return nil, err
	}
	if cfg.ContentRoot, err = ExpandPath(cfg.ContentRoot); err != nil {
		return nil, err
	}
	if cfg.Tracing.FilePath, err = ExpandPath(cfg.Tracing.FilePath); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values that YAML cannot.
func (c *Config) Validate() error {
	if c.IndexPath == "" {
		return errors.New("index_path is empty")
	}
	if c.MaxManifestBytes < 0 {
		return fmt.Errorf("max_manifest_bytes must not be negative: %d", c.MaxManifestBytes)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative: %d", c.Concurrency)
	}
	if _, err := c.EffectiveHTTPTimeout(); err != nil {
		return err
	}
	return nil
}

// EffectiveHTTPTimeout parses HTTPTimeout, defaulting to 30s when unset.
func (c *Config) EffectiveHTTPTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.HTTPTimeout) == "" {
		return defaultHTTPTimeout, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http_timeout %q: %w", c.HTTPTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("http_timeout must not be negative: %s", c.HTTPTimeout)
	}
	return d, nil
}

// Save marshals cfg and writes it to ~/.cindex/cindex.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile is Save for an explicit config path.
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
