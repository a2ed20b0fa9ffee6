// Package constraint implements version constraints, predicates over versions that are
// parsed from a compact text grammar.
//
// A Constraint is a tagged variant with four kinds:
//
//	*                   Any         every version
//	1.2.3, =1.2.3       Exact       versions with equal precedence (build metadata ignored)
//	>1.2.3, >=1.2.3,    Comparator  a single comparison
//	<1.2.3, <=1.2.3,
//	~1.2.3, ^1.2.3
//	[1.0.0,2.0.0)       Range       an interval, brackets are inclusive, parentheses exclusive
//
// Several comparators separated by whitespace or commas form a comparator set, which is the
// intersection of the individual comparators and is represented as a Range.
//
// Tilde allows patch level changes: ~1.2.3 is >=1.2.3 <1.3.0-0, ~1.2 is >=1.2.0 <1.3.0-0 and
// ~1 is >=1.0.0 <2.0.0-0. Caret allows changes that do not modify the leftmost non-zero
// component: ^1.2.3 is >=1.2.3 <2.0.0-0, ^0.2.3 is >=0.2.3 <0.3.0-0 and ^0.0.3 is
// >=0.0.3 <0.0.4-0. The exclusive upper bound of both is the lowest pre-release of the next
// version, so pre-releases of the next version are rejected as well.
// All other comparisons follow the version order without special treatment of pre-releases.
package constraint

import (
	"math"
	"strconv"
	"strings"

	"ocm.software/open-component-model/bindings/go/artifactory/validation"
	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

// Kind is the variant of a Constraint.
type Kind int

const (
	KindAny Kind = iota
	KindExact
	KindRange
	KindComparator
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindExact:
		return "Exact"
	case KindRange:
		return "Range"
	case KindComparator:
		return "Comparator"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Operator is the operator of a Comparator constraint.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpTilde        Operator = "~"
	OpCaret        Operator = "^"
)

func (op Operator) valid() bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpTilde, OpCaret:
		return true
	}
	return false
}

// Bound is one end of a Range.
type Bound struct {
	Version   version.Version
	Inclusive bool
}

// Constraint is an immutable predicate over versions. The zero value is Any.
type Constraint struct {
	kind Kind

	// Exact and Comparator
	version version.Version
	op      Operator
	// precision is the number of version components given for ~ and ^ (1 to 3).
	precision int

	// Range
	lower, upper *Bound

	// prerelease is set when a version written in the constraint is a pre-release.
	prerelease bool
}

// Any returns the constraint that accepts every version.
func Any() Constraint {
	return Constraint{kind: KindAny}
}

// Exact returns a constraint accepting versions with the same precedence as v.
func Exact(v version.Version) Constraint {
	return Constraint{kind: KindExact, version: v, prerelease: v.IsPrerelease()}
}

// NewComparator returns a comparator constraint. Tilde and caret comparators created
// through this constructor use all three version components.
func NewComparator(op Operator, v version.Version) (Constraint, error) {
	if !op.valid() {
		return Constraint{}, validation.New(validation.KindMalformedConstraint, string(op)+v.String(), string(op), "unknown operator")
	}
	return newComparator(op, v, 3), nil
}

func newComparator(op Operator, v version.Version, precision int) Constraint {
	return Constraint{kind: KindComparator, op: op, version: v, precision: precision, prerelease: v.IsPrerelease()}
}

// NewRange returns a range constraint. A nil bound is unbounded, at least one bound must be
// given. It fails if the lower bound is greater than the upper bound or if the interval
// is empty.
func NewRange(lower, upper *Bound) (Constraint, error) {
	c := Constraint{kind: KindRange}
	if lower != nil {
		l := *lower
		c.lower = &l
		c.prerelease = l.Version.IsPrerelease()
	}
	if upper != nil {
		u := *upper
		c.upper = &u
		c.prerelease = c.prerelease || u.Version.IsPrerelease()
	}
	if err := c.validateRange(); err != nil {
		return Constraint{}, err
	}
	return c, nil
}

func (c Constraint) validateRange() error {
	if c.lower == nil && c.upper == nil {
		return validation.New(validation.KindMalformedConstraint, c.String(), c.String(), "range must have at least one bound")
	}
	if c.lower == nil || c.upper == nil {
		return nil
	}
	switch cmp := version.Compare(c.lower.Version, c.upper.Version); {
	case cmp > 0:
		return validation.New(validation.KindMalformedConstraint, c.String(), c.String(), "lower bound is greater than upper bound")
	case cmp == 0 && !(c.lower.Inclusive && c.upper.Inclusive):
		return validation.New(validation.KindMalformedConstraint, c.String(), c.String(), "range is empty")
	}
	return nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Constraint {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Constraint) Kind() Kind {
	return c.kind
}

// Operator returns the operator of a Comparator constraint and "" otherwise.
func (c Constraint) Operator() Operator {
	return c.op
}

// Version returns the version of an Exact or Comparator constraint.
func (c Constraint) Version() (version.Version, bool) {
	switch c.kind {
	case KindExact, KindComparator:
		return c.version, true
	}
	return version.Version{}, false
}

// NamesPrerelease reports whether a version written in the constraint is a pre-release.
func (c Constraint) NamesPrerelease() bool {
	return c.prerelease
}

// Check reports whether v satisfies the constraint.
func (c Constraint) Check(v version.Version) bool {
	switch c.kind {
	case KindAny:
		return true
	case KindExact:
		return c.version.Equal(v)
	case KindRange:
		return within(v, c.lower, c.upper)
	case KindComparator:
		switch c.op {
		case OpGreater:
			return v.GreaterThan(c.version)
		case OpGreaterEqual:
			return !v.LessThan(c.version)
		case OpLess:
			return v.LessThan(c.version)
		case OpLessEqual:
			return !v.GreaterThan(c.version)
		case OpTilde, OpCaret:
			lower, upper := c.compatibleBounds()
			return within(v, &lower, upper)
		}
	}
	return false
}

func within(v version.Version, lower, upper *Bound) bool {
	if lower != nil {
		cmp := version.Compare(v, lower.Version)
		if cmp < 0 || (cmp == 0 && !lower.Inclusive) {
			return false
		}
	}
	if upper != nil {
		cmp := version.Compare(v, upper.Version)
		if cmp > 0 || (cmp == 0 && !upper.Inclusive) {
			return false
		}
	}
	return true
}

// compatibleBounds returns the interval of a tilde or caret comparator. The upper bound is
// nil if bumping the relevant component would overflow.
func (c Constraint) compatibleBounds() (Bound, *Bound) {
	lower := Bound{Version: c.version, Inclusive: true}
	major, minor, patch := c.version.Major(), c.version.Minor(), c.version.Patch()

	var next version.Version
	switch {
	case c.op == OpTilde && c.precision == 1,
		c.op == OpCaret && (major > 0 || c.precision == 1):
		if major == math.MaxUint64 {
			return lower, nil
		}
		next = version.New(major+1, 0, 0)
	case c.op == OpTilde,
		c.op == OpCaret && (minor > 0 || c.precision == 2):
		if minor == math.MaxUint64 {
			return lower, nil
		}
		next = version.New(major, minor+1, 0)
	default:
		if patch == math.MaxUint64 {
			return lower, nil
		}
		next = version.New(major, minor, patch+1)
	}
	return lower, &Bound{Version: next.Floor(), Inclusive: false}
}

// Bounds returns the interval of versions accepted by the constraint. A nil bound is
// unbounded, so Any yields (nil, nil).
func (c Constraint) Bounds() (lower, upper *Bound) {
	switch c.kind {
	case KindExact:
		return &Bound{Version: c.version, Inclusive: true}, &Bound{Version: c.version, Inclusive: true}
	case KindRange:
		if c.lower != nil {
			l := *c.lower
			lower = &l
		}
		if c.upper != nil {
			u := *c.upper
			upper = &u
		}
		return lower, upper
	case KindComparator:
		switch c.op {
		case OpGreater:
			return &Bound{Version: c.version}, nil
		case OpGreaterEqual:
			return &Bound{Version: c.version, Inclusive: true}, nil
		case OpLess:
			return nil, &Bound{Version: c.version}
		case OpLessEqual:
			return nil, &Bound{Version: c.version, Inclusive: true}
		case OpTilde, OpCaret:
			l, u := c.compatibleBounds()
			return &l, u
		}
	}
	return nil, nil
}

// Equal reports whether both constraints are structurally equal. Versions are compared by
// precedence, so build metadata is ignored.
func (c Constraint) Equal(o Constraint) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindExact:
		return c.version.Equal(o.version)
	case KindComparator:
		return c.op == o.op && c.precision == o.precision && c.version.Equal(o.version)
	case KindRange:
		return boundEqual(c.lower, o.lower) && boundEqual(c.upper, o.upper)
	}
	return true
}

func boundEqual(a, b *Bound) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Inclusive == b.Inclusive && a.Version.Equal(b.Version)
}

// String returns the canonical text form of the constraint, which parses to an equal
// constraint.
func (c Constraint) String() string {
	switch c.kind {
	case KindExact:
		return c.version.String()
	case KindComparator:
		if c.precision < 3 {
			s := strconv.FormatUint(c.version.Major(), 10)
			if c.precision == 2 {
				s += "." + strconv.FormatUint(c.version.Minor(), 10)
			}
			return string(c.op) + s
		}
		return string(c.op) + c.version.String()
	case KindRange:
		var sb strings.Builder
		if c.lower != nil && c.lower.Inclusive {
			sb.WriteByte('[')
		} else {
			sb.WriteByte('(')
		}
		if c.lower != nil {
			sb.WriteString(c.lower.Version.String())
		}
		sb.WriteByte(',')
		if c.upper != nil {
			sb.WriteString(c.upper.Version.String())
		}
		if c.upper != nil && c.upper.Inclusive {
			sb.WriteByte(']')
		} else {
			sb.WriteByte(')')
		}
		return sb.String()
	}
	return "*"
}

func (c Constraint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Constraint) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
