package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/provider/common"
)

const maxManifestSize = 8 << 20

var ErrOffline = errors.New("registry offline")

var tracer = otel.Tracer("github.com/dreamswag/ci5dev/internal/registry")

type Loader struct {
	client      *http.Client
	manifestURL string
	limit       int
	metrics     *metrics.Metrics
}

type Option func(*Loader)

// WithConcurrency caps how many external sources are fetched at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.limit = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

func NewLoader(client *http.Client, manifestURL string, opts ...Option) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	l := &Loader{
		client:      client,
		manifestURL: manifestURL,
		limit:       4,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPrimary fetches the signed manifest. Any failure yields an empty
// registry marked Offline together with an error wrapping ErrOffline.
func (l *Loader) LoadPrimary(ctx context.Context) (*domain.Registry, error) {
	ctx, span := tracer.Start(ctx, "registry.LoadPrimary")
	defer span.End()

	offline := func(err error) (*domain.Registry, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "offline")
		l.metrics.SourceFetch("primary", "error")
		logger.LogError("LOAD_MANIFEST", l.manifestURL, err)

		reg := domain.NewRegistry()
		reg.Offline = true
		return reg, fmt.Errorf("%w: %w", ErrOffline, err)
	}

	data, err := l.fetch(ctx, l.manifestURL)
	if err != nil {
		return offline(err)
	}

	reg, err := ParseManifest(data)
	if err != nil {
		return offline(fmt.Errorf("%w: %v", common.ErrMalformedResponse, err))
	}

	l.metrics.SourceFetch("primary", "ok")
	span.SetAttributes(
		attribute.Int("registry.official", reg.Official.Len()),
		attribute.Int("registry.community", reg.Community.Len()),
	)
	logger.Log("Registry: loaded %d official, %d community, %d cellar corks",
		reg.Official.Len(), reg.Community.Len(), reg.Cellar.Len())
	return reg, nil
}

// LoadSources fetches every enabled source concurrently and returns once
// all of them have settled, in the order given. A failed source yields an
// empty collection with Err set.
func (l *Loader) LoadSources(ctx context.Context, sources []domain.ExternalSource) []domain.SourceCollection {
	enabled := make([]domain.ExternalSource, 0, len(sources))
	for _, src := range sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	results := make([]domain.SourceCollection, len(enabled))

	var g errgroup.Group
	g.SetLimit(l.limit)
	for i, src := range enabled {
		i, src := i, src
		g.Go(func() error {
			results[i] = l.loadSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (l *Loader) loadSource(ctx context.Context, src domain.ExternalSource) domain.SourceCollection {
	ctx, span := tracer.Start(ctx, "registry.LoadSource",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("source.url", src.URL)))
	defer span.End()

	result := domain.SourceCollection{
		Source:  src,
		Name:    DisplayName(src, ""),
		Entries: domain.NewCollection(),
	}

	data, err := l.fetch(ctx, src.URL)
	if err == nil {
		var name string
		var entries *domain.Collection
		name, entries, err = NormalizeExternal(data, src)
		if err == nil {
			result.Name = DisplayName(src, name)
			result.Entries = entries
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source failed")
		l.metrics.SourceFetch("external", "error")
		logger.LogError("LOAD_SOURCE", src.URL, err)
		result.Err = err
		return result
	}

	l.metrics.SourceFetch("external", "ok")
	logger.Log("Registry: source %s provided %d corks", result.Name, result.Entries.Len())
	return result
}

// Load fetches the primary manifest and the sources concurrently. The
// returned registry is complete even when err (from the primary) is set.
func (l *Loader) Load(ctx context.Context, sources []domain.ExternalSource) (*domain.Registry, error) {
	var (
		reg        *domain.Registry
		primaryErr error
		external   []domain.SourceCollection
	)

	var g errgroup.Group
	g.Go(func() error {
		reg, primaryErr = l.LoadPrimary(ctx)
		return nil
	})
	g.Go(func() error {
		external = l.LoadSources(ctx, sources)
		return nil
	})
	_ = g.Wait()

	reg.Sources = external
	reg.Merged = MergeAll(external)
	return reg, primaryErr
}

// MergeAll flattens the sources into one collection. On key collisions
// later sources win.
func MergeAll(results []domain.SourceCollection) *domain.Collection {
	merged := domain.NewCollection()
	for _, r := range results {
		for _, cork := range r.Entries.Entries() {
			merged.Set(cork.Key, cork)
		}
	}
	return merged
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	common.SetUserAgent(req)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := common.CheckStatus(resp); err != nil {
		return nil, err
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
}
