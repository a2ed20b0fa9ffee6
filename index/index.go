// Package index resolves version queries against a repository index.
//
// An index is anything that can list the version tags of an artifact, see VersionLister.
// Tags that are not valid versions are skipped and logged, so a single bad tag in a remote
// repository does not break resolution of the others.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"ocm.software/open-component-model/bindings/go/artifactory/coordinate"
	"ocm.software/open-component-model/bindings/go/artifactory/resolver"
)

var (
	// ErrNotFound is returned by a VersionLister when the artifact is unknown.
	ErrNotFound = errors.New("not found")
	// ErrNoMatch is returned when an artifact is known but none of its versions satisfies
	// the query.
	ErrNoMatch = errors.New("no matching version")
)

// VersionLister lists the raw version tags of an artifact.
type VersionLister interface {
	ListVersions(ctx context.Context, namespace, name string) ([]string, error)
}

// Options holds the configuration for resolving queries.
type Options struct {
	concurrencyLimit int
	resolverOptions  []resolver.Option
}

// Option is a function that configures Options.
type Option func(*Options)

// WithConcurrencyLimit sets the maximum number of queries ResolveAll resolves at once.
// A negative limit removes the bound, zero keeps DefaultConcurrencyLimit.
func WithConcurrencyLimit(limit int) Option {
	return func(o *Options) {
		o.concurrencyLimit = limit
	}
}

// WithoutPrereleases skips pre-release versions unless a query names one.
func WithoutPrereleases() Option {
	return func(o *Options) {
		o.resolverOptions = append(o.resolverOptions, resolver.WithoutPrereleases())
	}
}

// WithLenientVersions accepts loose tags such as "v1.2" from the index.
func WithLenientVersions() Option {
	return func(o *Options) {
		o.resolverOptions = append(o.resolverOptions, resolver.WithLenientVersions())
	}
}

func newOptions(opts ...Option) *Options {
	options := &Options{concurrencyLimit: DefaultConcurrencyLimit}
	for _, opt := range opts {
		opt(options)
	}
	if options.concurrencyLimit == 0 {
		options.concurrencyLimit = DefaultConcurrencyLimit
	}
	return options
}

// Resolve returns the coordinate of the best release matching the query.
// It fails with ErrNoMatch if no listed version satisfies the constraint.
// The coordinate carries the canonical version; use ResolveAll to also get the tag as listed.
func Resolve(ctx context.Context, lister VersionLister, q Query, opts ...Option) (coordinate.Coordinate, error) {
	c, _, err := resolve(ctx, lister, q, newOptions(opts...))
	return c, err
}

func resolve(ctx context.Context, lister VersionLister, q Query, options *Options) (coordinate.Coordinate, string, error) {
	tags, err := lister.ListVersions(ctx, q.Namespace, q.Name)
	if err != nil {
		return coordinate.Coordinate{}, "", fmt.Errorf("listing versions of %s failed: %w", q.Key(), err)
	}
	tag, v, ok := resolver.ResolveTag(ctx, q.Constraint, tags, options.resolverOptions...)
	if !ok {
		return coordinate.Coordinate{}, "", fmt.Errorf("%s: %w", q, ErrNoMatch)
	}
	c, err := coordinate.New(q.Namespace, q.Name, v)
	if err != nil {
		return coordinate.Coordinate{}, "", err
	}
	return c, tag, nil
}

// Result is the outcome of a single query of ResolveAll.
type Result struct {
	Query      Query
	Coordinate coordinate.Coordinate
	// Tag is the version tag as the lister returned it. It differs from the coordinate's
	// version only for loose tags accepted with WithLenientVersions, e.g. "v1.2".
	Tag string
	// Err is ErrNotFound or ErrNoMatch (wrapped) if the query could not be satisfied.
	Err error
}

// ResolveAll resolves the queries concurrently. The results are in the order of the queries.
// Queries that cannot be satisfied are reported in their Result; any other failure of the
// lister cancels the remaining queries and is returned.
func ResolveAll(ctx context.Context, lister VersionLister, queries []Query, opts ...Option) ([]Result, error) {
	options := newOptions(opts...)
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "index"))

	results := make([]Result, len(queries))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(options.concurrencyLimit)

	for i, q := range queries {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, tag, err := resolve(ctx, lister, q, options)
			switch {
			case err == nil:
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoMatch):
				logger.DebugContext(ctx, "query not satisfied", slog.String("query", q.String()), slog.String("error", err.Error()))
			default:
				logger.ErrorContext(ctx, "resolving query failed", slog.String("query", q.String()), slog.String("error", err.Error()))
				return err
			}
			// each goroutine owns its slot
			results[i] = Result{Query: q, Coordinate: c, Tag: tag, Err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
