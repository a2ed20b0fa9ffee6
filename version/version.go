// Package version implements the version grammar of artifact releases.
//
// A version has the form MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]. All three numeric
// components are mandatory and must not carry leading zeros, no "v" prefix is accepted.
// Versions are immutable values with a total order: the numeric core is compared first,
// a release is greater than any of its pre-releases, pre-release identifiers are compared
// left to right (numeric identifiers numerically and below alphanumeric ones) and build
// metadata is ignored entirely.
package version

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Version is a parsed version. The zero value is 0.0.0.
// Use Compare or Equal rather than == to compare versions.
type Version struct {
	major, minor, patch uint64
	pre                 []identifier
	build               string
}

// identifier is a single dot separated pre-release identifier.
type identifier struct {
	value   string
	numeric bool
}

// New creates a release version without pre-release or build metadata.
func New(major, minor, patch uint64) Version {
	return Version{major: major, minor: minor, patch: patch}
}

// MustParse is like Parse but panics if the version cannot be parsed.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) Major() uint64 { return v.major }
func (v Version) Minor() uint64 { return v.minor }
func (v Version) Patch() uint64 { return v.patch }

// Prerelease returns the pre-release part without the leading "-".
func (v Version) Prerelease() string {
	if len(v.pre) == 0 {
		return ""
	}
	ids := make([]string, len(v.pre))
	for i, id := range v.pre {
		ids[i] = id.value
	}
	return strings.Join(ids, ".")
}

// PrereleaseIdentifiers returns a copy of the dot separated pre-release identifiers.
func (v Version) PrereleaseIdentifiers() []string {
	if len(v.pre) == 0 {
		return nil
	}
	ids := make([]string, len(v.pre))
	for i, id := range v.pre {
		ids[i] = id.value
	}
	return ids
}

// Build returns the build metadata without the leading "+".
func (v Version) Build() string {
	return v.build
}

func (v Version) IsPrerelease() bool {
	return len(v.pre) > 0
}

// Core returns the version with pre-release and build metadata removed.
func (v Version) Core() Version {
	return New(v.major, v.minor, v.patch)
}

// Floor returns the smallest version with the same numeric core as v, which is
// MAJOR.MINOR.PATCH-0. Every pre-release of that core is greater or equal to it.
func (v Version) Floor() Version {
	return Version{major: v.major, minor: v.minor, patch: v.patch, pre: []identifier{{value: "0", numeric: true}}}
}

// String returns the canonical text form. Parsing it yields an identical version.
func (v Version) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(v.major, 10))
	sb.WriteByte('.')
	sb.WriteString(strconv.FormatUint(v.minor, 10))
	sb.WriteByte('.')
	sb.WriteString(strconv.FormatUint(v.patch, 10))
	if len(v.pre) > 0 {
		sb.WriteByte('-')
		sb.WriteString(v.Prerelease())
	}
	if v.build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.build)
	}
	return sb.String()
}

// GoString makes versions readable in test failure output.
func (v Version) GoString() string {
	return fmt.Sprintf("version.MustParse(%q)", v.String())
}

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to or greater
// than b. Build metadata does not take part in the comparison.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.major, b.major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.minor, b.minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.patch, b.patch); c != 0 {
		return c
	}
	return comparePrerelease(a.pre, b.pre)
}

func comparePrerelease(a, b []identifier) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].compare(b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func (id identifier) compare(o identifier) int {
	switch {
	case id.numeric && o.numeric:
		// numeric identifiers have no leading zeros, so the longer one is larger
		if c := cmp.Compare(len(id.value), len(o.value)); c != 0 {
			return c
		}
		return strings.Compare(id.value, o.value)
	case id.numeric:
		return -1
	case o.numeric:
		return 1
	default:
		return strings.Compare(id.value, o.value)
	}
}

func (v Version) Compare(o Version) int {
	return Compare(v, o)
}

// Equal reports whether both versions have the same precedence, ignoring build metadata.
func (v Version) Equal(o Version) bool {
	return Compare(v, o) == 0
}

func (v Version) LessThan(o Version) bool {
	return Compare(v, o) < 0
}

func (v Version) GreaterThan(o Version) bool {
	return Compare(v, o) > 0
}

// CompareBuild is like Compare but orders versions of equal precedence by their build
// metadata, lexically. Unlike Compare it is a strict order on distinct version strings.
func CompareBuild(a, b Version) int {
	if c := Compare(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a.build, b.build)
}

// Sort sorts versions in ascending order. Versions that differ only in build metadata keep
// their relative order.
func Sort(vs []Version) {
	slices.SortStableFunc(vs, Compare)
}

// SortDescending sorts versions newest first.
func SortDescending(vs []Version) {
	slices.SortStableFunc(vs, func(a, b Version) int {
		return Compare(b, a)
	})
}

// Max returns the greatest of the given versions. If several versions share the greatest
// precedence, the one with the lexically smallest build metadata is returned so that the
// result does not depend on the order of vs.
func Max(vs ...Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		c := Compare(v, best)
		if c > 0 || (c == 0 && v.build < best.build) {
			best = v
		}
	}
	return best, true
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
