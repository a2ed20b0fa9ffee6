// Package resolver selects the best version out of a set of candidates for a constraint.
//
// Resolution is pure: the result depends only on the constraint and the set of candidates,
// never on their order or on duplicates.
package resolver

import (
	"context"
	"log/slog"
	"slices"

	slogcontext "github.com/veqryn/slog-context"

	"ocm.software/open-component-model/bindings/go/artifactory/constraint"
	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

// Options holds the configuration for resolving versions.
type Options struct {
	excludePrereleases bool
	lenient            bool
}

// Option is a function that configures Options.
type Option func(*Options)

// WithoutPrereleases drops pre-release candidates, unless the constraint itself names a
// pre-release (e.g. ">=2.0.0-rc.1").
func WithoutPrereleases() Option {
	return func(o *Options) {
		o.excludePrereleases = true
	}
}

// WithLenientVersions makes ResolveStrings accept loose version tags such as "v1.2".
// See version.ParseLenient.
func WithLenientVersions() Option {
	return func(o *Options) {
		o.lenient = true
	}
}

// NewOptions applies opts on top of the defaults.
func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func (o *Options) accepts(c constraint.Constraint, v version.Version) bool {
	if o.excludePrereleases && v.IsPrerelease() && !c.NamesPrerelease() {
		return false
	}
	return c.Check(v)
}

// Resolve returns the greatest candidate satisfying c. The second return value is false if
// no candidate matches.
func Resolve(c constraint.Constraint, candidates []version.Version, opts ...Option) (version.Version, bool) {
	options := NewOptions(opts...)

	var best version.Version
	found := false
	for _, v := range candidates {
		if !options.accepts(c, v) {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		best, _ = version.Max(best, v)
	}
	return best, found
}

// Matching returns all candidates satisfying c in ascending order. Versions that differ
// only in build metadata are ordered by it, so the result does not depend on the order of
// candidates.
func Matching(c constraint.Constraint, candidates []version.Version, opts ...Option) []version.Version {
	options := NewOptions(opts...)

	var matched []version.Version
	for _, v := range candidates {
		if options.accepts(c, v) {
			matched = append(matched, v)
		}
	}
	slices.SortFunc(matched, version.CompareBuild)
	return matched
}

// ResolveStrings is like Resolve for raw version strings as they are returned by a
// repository. Candidates that cannot be parsed are skipped and logged.
func ResolveStrings(ctx context.Context, c constraint.Constraint, raw []string, opts ...Option) (version.Version, bool) {
	_, v, ok := ResolveTag(ctx, c, raw, opts...)
	return v, ok
}

// ResolveTag is like ResolveStrings but also returns the string the resolved version was
// parsed from. With WithLenientVersions the tag may differ from the version's canonical
// form, e.g. "v1.2" for 1.2.0. If several strings parse to the same version, the lexically
// smallest one is returned.
func ResolveTag(ctx context.Context, c constraint.Constraint, raw []string, opts ...Option) (string, version.Version, bool) {
	options := NewOptions(opts...)
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "resolver"))

	parse := version.Parse
	if options.lenient {
		parse = version.ParseLenient
	}

	var (
		best    version.Version
		bestTag string
		found   bool
		valid   int
	)
	for _, s := range raw {
		v, err := parse(s)
		if err != nil {
			logger.DebugContext(ctx, "skipping invalid version", slog.String("version", s), slog.String("error", err.Error()))
			continue
		}
		valid++
		if !options.accepts(c, v) {
			continue
		}
		if !found || preferred(v, s, best, bestTag) {
			best, bestTag, found = v, s, true
		}
	}

	if found {
		logger.DebugContext(ctx, "resolved version", slog.String("constraint", c.String()), slog.String("version", best.String()), slog.String("tag", bestTag))
	} else {
		logger.DebugContext(ctx, "no version satisfies constraint", slog.String("constraint", c.String()), slog.Int("candidates", valid))
	}
	return bestTag, best, found
}

// preferred reports whether v, parsed from tag, beats the current best. It agrees with
// version.Max and breaks the remaining ties on the tag.
func preferred(v version.Version, tag string, best version.Version, bestTag string) bool {
	if c := version.Compare(v, best); c != 0 {
		return c > 0
	}
	if v.Build() != best.Build() {
		return v.Build() < best.Build()
	}
	return tag < bestTag
}
