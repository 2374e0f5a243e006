// Package manifest fetches component manifests and splits them into facets.
package manifest

import (
	"context"
	"errors"
	"sort"

	"github.com/kamusis/cindex-cli/internal/facet"
	"github.com/kamusis/cindex-cli/internal/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Manifest is one resolved component identifier. It is built fresh on
// every fetch and not modified afterwards.
type Manifest struct {
	ID string
	// Raw is the decoded manifest text.
	Raw []byte
	// Facets maps a facet type (e.g. "fuchsia:component") to its data.
	Facets map[string]facet.Value
	// Skipped lists top-level entries that could not be represented as
	// facet data and were left out of Facets.
	Skipped []*facet.ConversionError
}

// Facet returns the data of one facet type.
func (m *Manifest) Facet(facetType string) (facet.Value, bool) {
	v, ok := m.Facets[facetType]
	return v, ok
}

// FacetTypes returns the facet types present, sorted.
func (m *Manifest) FacetTypes() []string {
	out := make([]string, 0, len(m.Facets))
	for k := range m.Facets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RequireFacet returns a *MissingFacetError when m lacks facetType.
func RequireFacet(m *Manifest, facetType string) error {
	if _, ok := m.Facets[facetType]; !ok {
		return &MissingFacetError{ID: m.ID, Facet: facetType}
	}
	return nil
}

// Fetcher resolves identifiers to manifests through a Transport.
type Fetcher struct {
	transport transport.Transport
	maxBytes  int64
	logger    *zap.Logger
	tracer    trace.Tracer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBytes bounds the decoded manifest size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithLogger sets the logger used for per-facet diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithTracer sets the tracer used for fetch spans.
func WithTracer(t trace.Tracer) Option {
	return func(f *Fetcher) {
		if t != nil {
			f.tracer = t
		}
	}
}

// NewFetcher returns a Fetcher reading through t.
func NewFetcher(t transport.Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport: t,
		logger:    zap.NewNop(),
		tracer:    noop.NewTracerProvider().Tracer(""),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Get fetches, decodes and parses the manifest for id. Errors are a
// *transport.Error, *DecodeError or *ParseError. Nothing is retried.
func (f *Fetcher) Get(ctx context.Context, id string) (*Manifest, error) {
	ctx, span := f.tracer.Start(ctx, "manifest.Get", trace.WithAttributes(attribute.String("component.id", id)))
	defer span.End()

	m, err := f.get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("manifest.facets", len(m.Facets)))
	return m, nil
}

func (f *Fetcher) get(ctx context.Context, id string) (*Manifest, error) {
	raw, err := f.transport.Fetch(ctx, id)
	if err != nil {
		var te *transport.Error
		if !errors.As(err, &te) {
			err = &transport.Error{ID: id, Description: err.Error(), Err: err}
		}
		return nil, err
	}

	text, err := Decode(id, raw, f.maxBytes)
	if err != nil {
		return nil, err
	}

	m, err := Parse(id, text)
	if err != nil {
		return nil, err
	}
	for _, ce := range m.Skipped {
		f.logger.Warn("skipping unconvertible facet",
			zap.String("id", id),
			zap.String("facet", ce.Facet),
			zap.String("path", ce.Path),
			zap.String("type", ce.Type))
	}
	return m, nil
}

// Parse builds a Manifest from decoded manifest text. Every top-level key
// of the JSON object becomes a facet; entries that fail conversion are
// recorded in Skipped instead of failing the parse.
func Parse(id string, text []byte) (*Manifest, error) {
	doc, err := facet.DecodeJSON(text)
	if err != nil {
		return nil, &ParseError{ID: id, Reason: "invalid JSON", Err: err}
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, &ParseError{ID: id, Reason: "manifest is not a JSON object"}
	}

	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := &Manifest{
		ID:     id,
		Raw:    text,
		Facets: make(map[string]facet.Value, len(root)),
	}
	for _, k := range keys {
		v, err := facet.FromJSON(root[k])
		if err != nil {
			var ce *facet.ConversionError
			if errors.As(err, &ce) {
				ce.Facet = k
				m.Skipped = append(m.Skipped, ce)
				continue
			}
			return nil, &ParseError{ID: id, Reason: "invalid facet " + k, Err: err}
		}
		m.Facets[k] = v
	}
	return m, nil
}
