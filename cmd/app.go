package cmd

import (
	"fmt"

	"github.com/kamusis/cindex-cli/internal/catalog"
	"github.com/kamusis/cindex-cli/internal/config"
	"github.com/kamusis/cindex-cli/internal/manifest"
	"github.com/kamusis/cindex-cli/internal/resolver"
	"github.com/kamusis/cindex-cli/internal/tracing"
	"github.com/kamusis/cindex-cli/internal/transport"
)

// tracer is set by loadConfig and shut down by flush.
var tracer *tracing.Provider

// loadConfig reads --config, or ~/.cindex/cindex.yaml when unset, and
// starts the tracing provider it describes.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if tracer == nil {
		p, err := tracing.NewProvider(cfg.Tracing)
		if err != nil {
			return nil, fmt.Errorf("cannot start tracing: %w", err)
		}
		tracer = p
	}
	return cfg, nil
}

// newFileTransport returns the transport for identifiers without a web
// scheme, rooted at the configured content directory.
func newFileTransport(cfg *config.Config) *transport.File {
	return transport.NewFile(cfg.ContentRoot, cfg.MaxManifestBytes)
}

// newTransport routes http and https identifiers to the network and
// everything else to the content root.
func newTransport(cfg *config.Config) (transport.Transport, error) {
	timeout, err := cfg.EffectiveHTTPTimeout()
	if err != nil {
		return nil, err
	}
	web := transport.NewHTTP(timeout, cfg.MaxManifestBytes)
	return &transport.Router{
		Schemes: map[string]transport.Transport{"http": web, "https": web},
		Default: newFileTransport(cfg),
	}, nil
}

func newFetcher(cfg *config.Config) (*manifest.Fetcher, error) {
	t, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return manifest.NewFetcher(t,
		manifest.WithMaxBytes(cfg.MaxManifestBytes),
		manifest.WithLogger(logger.Named("manifest")),
		manifest.WithTracer(tracer.Tracer()),
	), nil
}

// newResolver builds a resolver over the configured component index. A
// missing or malformed index is an error.
func newResolver(cfg *config.Config) (*resolver.Resolver, error) {
	cat, err := catalog.Load(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load component index: %w", err)
	}
	f, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return resolver.New(cat, f,
		resolver.WithConcurrency(cfg.Concurrency),
		resolver.WithLogger(logger.Named("resolver")),
		resolver.WithTracer(tracer.Tracer()),
	), nil
}
