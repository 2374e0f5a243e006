// Package resolver answers lookups and facet queries over a catalog of
// component identifiers.
package resolver

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kamusis/cindex-cli/internal/barrier"
	"github.com/kamusis/cindex-cli/internal/catalog"
	"github.com/kamusis/cindex-cli/internal/facet"
	"github.com/kamusis/cindex-cli/internal/manifest"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Getter fetches one manifest. *manifest.Fetcher implements it.
type Getter interface {
	Get(ctx context.Context, id string) (*manifest.Manifest, error)
}

// Resolver serves single lookups and catalog-wide queries. The catalog is
// fixed at construction; each query keeps its own state.
type Resolver struct {
	catalog     catalog.Catalog
	getter      Getter
	concurrency int
	logger      *zap.Logger
	tracer      trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency caps the number of fetches in flight per query. Zero or
// less means one goroutine per catalog entry.
func WithConcurrency(n int) Option {
	return func(r *Resolver) { r.concurrency = n }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer used for query spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

// New returns a Resolver over cat that fetches through g.
func New(cat catalog.Catalog, g Getter, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: cat,
		getter:  g,
		logger:  zap.NewNop(),
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Catalog returns the catalog the resolver queries.
func (r *Resolver) Catalog() catalog.Catalog { return r.catalog }

// GetManifest resolves a single identifier. Fetch, decode and parse
// failures are returned to the caller.
func (r *Resolver) GetManifest(ctx context.Context, id string) (*manifest.Manifest, error) {
	return r.getter.Get(ctx, id)
}

// FindMatching returns the manifests of every cataloged component whose
// facets satisfy filter. Entries that fail to fetch or parse are left
// out. The only error is a filter that cannot be evaluated, such as one
// comparing lists; matches found before it are discarded. Result order
// is unspecified.
func (r *Resolver) FindMatching(ctx context.Context, filter facet.Filter) ([]*manifest.Manifest, error) {
	type outcome struct {
		matches []*manifest.Manifest
		err     error
	}
	ch := make(chan outcome, 1)
	r.FindMatchingAsync(ctx, filter, func(ms []*manifest.Manifest, err error) {
		ch <- outcome{ms, err}
	})
	out := <-ch
	return out.matches, out.err
}

// FindMatchingAsync runs the query of FindMatching in the background and
// calls done exactly once, after every catalog entry has been fetched and
// evaluated or has failed. With an empty catalog done runs before
// FindMatchingAsync returns.
func (r *Resolver) FindMatchingAsync(ctx context.Context, filter facet.Filter, done func([]*manifest.Manifest, error)) {
	ids := r.catalog.IDs()
	log := r.logger.With(zap.String("query", uuid.NewString()))
	parent := ctx
	ctx, span := r.tracer.Start(ctx, "resolver.FindMatching", trace.WithAttributes(
		attribute.Int("catalog.size", len(ids)),
		attribute.StringSlice("filter.facets", filter.Types()),
	))

	acc := &accumulator{}
	b := barrier.New(len(ids), func() {
		defer span.End()
		matches, err := acc.result()
		// Entries lost to a cancelled caller are not mismatches. A filter
		// error found first still wins.
		if err == nil && acc.failures() > 0 && parent.Err() != nil {
			matches, err = nil, parent.Err()
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int("query.matches", len(matches)),
			attribute.Int("query.failures", acc.failures()),
		)
		log.Debug("query complete",
			zap.Int("catalog", len(ids)),
			zap.Int("matches", len(matches)),
			zap.Int("failures", acc.failures()),
			zap.Error(err))
		done(matches, err)
	})
	if len(ids) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	go func() {
		for _, id := range ids {
			g.Go(func() error {
				defer b.Done()
				err := r.evaluate(gctx, log, acc, id, filter)
				log.Debug("entry evaluated", zap.String("id", id), zap.Int("pending", b.Remaining()-1))
				return err
			})
		}
		// Wait releases the group context; the barrier has already
		// delivered the result by the time it returns.
		_ = g.Wait()
	}()
}

// evaluate fetches and matches one entry. Only an unusable filter is
// returned as an error, which cancels fetches still in flight.
func (r *Resolver) evaluate(ctx context.Context, log *zap.Logger, acc *accumulator, id string, filter facet.Filter) error {
	m, err := r.getter.Get(ctx, id)
	if err != nil {
		log.Debug("excluding unresolvable entry", zap.String("id", id), zap.Error(err))
		acc.fail()
		return nil
	}
	ok, err := facet.ManifestMatches(m.Facets, filter)
	if err != nil {
		log.Error("filter cannot be evaluated", zap.String("id", id), zap.Error(err))
		acc.abort(err)
		return err
	}
	if ok {
		acc.add(m)
	}
	return nil
}

// accumulator collects the outcome of one query.
type accumulator struct {
	mu       sync.Mutex
	matches  []*manifest.Manifest
	failed   int
	firstErr error
}

func (a *accumulator) add(m *manifest.Manifest) {
	a.mu.Lock()
	a.matches = append(a.matches, m)
	a.mu.Unlock()
}

func (a *accumulator) fail() {
	a.mu.Lock()
	a.failed++
	a.mu.Unlock()
}

func (a *accumulator) abort(err error) {
	a.mu.Lock()
	if a.firstErr == nil {
		a.firstErr = err
	}
	a.mu.Unlock()
}

func (a *accumulator) failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

func (a *accumulator) result() ([]*manifest.Manifest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.firstErr != nil {
		return nil, a.firstErr
	}
	out := make([]*manifest.Manifest, len(a.matches))
	copy(out, a.matches)
	return out, nil
}
