package coordinate

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Pattern matches coordinates by their "<namespace>/<name>" key using glob syntax.
// '/' is a separator, so "acme/*" matches every artifact in the acme namespace while
// "*" alone matches nothing that contains a '/'. Use "**" to cross separators.
type Pattern struct {
	pattern string
	glob    glob.Glob
}

// CompilePattern compiles a glob pattern such as "acme/*", "*/cli-{linux,darwin}" or "**".
func CompilePattern(pattern string) (Pattern, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return Pattern{}, fmt.Errorf("failed to compile glob pattern %q: %w", pattern, err)
	}
	return Pattern{pattern: pattern, glob: g}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(pattern string) Pattern {
	p, err := CompilePattern(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the key of c matches the pattern.
func (p Pattern) Match(c Coordinate) bool {
	return p.MatchKey(c.Key())
}

// MatchKey reports whether a "<namespace>/<name>" key matches the pattern.
// The zero Pattern matches nothing.
func (p Pattern) MatchKey(key string) bool {
	if p.glob == nil {
		return false
	}
	return p.glob.Match(key)
}

func (p Pattern) String() string {
	return p.pattern
}
