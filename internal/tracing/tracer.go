// Package tracing configures the OpenTelemetry provider behind lookup and
// query spans. Tracing is off unless enabled in the config file.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultServiceName  = "cindex"
	defaultOTLPEndpoint = "localhost:4317"
)

// Config is the tracing section of cindex.yaml.
type Config struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is one of "none", "file", "stdout" or "otlp".
	Exporter string `yaml:"exporter"`
	// FilePath receives one JSON span per line with the "file" exporter.
	FilePath     string  `yaml:"file_path,omitempty"`
	OTLPEndpoint string  `yaml:"otlp_endpoint,omitempty"`
	SampleRate   float64 `yaml:"sample_rate,omitempty"`
	ServiceName  string  `yaml:"service_name,omitempty"`
}

// DefaultConfig returns a disabled configuration that would write to a
// file once enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Exporter:     "file",
		OTLPEndpoint: defaultOTLPEndpoint,
		SampleRate:   1.0,
		ServiceName:  defaultServiceName,
	}
}

// Provider owns the tracer provider and whatever the exporter writes to.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	closer   io.Closer
}

// NewProvider builds a provider from cfg. A disabled config yields a no-op
// tracer and installs nothing globally.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(defaultServiceName)}, nil
	}

	var (
		exporter sdktrace.SpanExporter
		closer   io.Closer
		err      error
	)
	switch cfg.Exporter {
	case "file":
		if cfg.FilePath == "" {
			return nil, errors.New("tracing.file_path required for file exporter")
		}
		var f *os.File
		if f, err = openTraceFile(cfg.FilePath); err != nil {
			return nil, err
		}
		closer = f
		if exporter, err = stdouttrace.New(stdouttrace.WithWriter(f)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create file exporter: %w", err)
		}
	case "stdout":
		if exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint()); err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
	case "otlp":
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		exporter, err = otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1.0
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &Provider{provider: tp, tracer: tp.Tracer(name), closer: closer}, nil
}

func openTraceFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create trace dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open trace file %s: %w", path, err)
	}
	return f, nil
}

// Tracer returns the tracer for cindex spans. It is never nil.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool { return p.provider != nil }

// Shutdown flushes pending spans and closes the exporter's output.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	err := p.provider.Shutdown(ctx)
	if p.closer != nil {
		if cerr := p.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
