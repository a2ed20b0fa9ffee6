package constraint

import (
	"strings"

	"ocm.software/open-component-model/bindings/go/artifactory/validation"
	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

// operators in the order they are matched, two character operators first.
var operators = []Operator{OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpTilde, OpCaret, "="}

type term struct {
	op    Operator
	value string
	// text is the term as written, operator included.
	text string
}

// Parse parses a constraint. Failures are *validation.Error values of kind
// validation.KindMalformedConstraint. If the failure was caused by a malformed version the
// version error is kept as the cause.
func Parse(s string) (Constraint, error) {
	input := strings.TrimSpace(s)
	switch {
	case input == "":
		return Constraint{}, malformed(s, "", "constraint must not be empty")
	case input == "*":
		return Any(), nil
	case input[0] == '[' || input[0] == '(':
		return parseRange(s, input)
	}

	terms, err := scanTerms(s, input)
	if err != nil {
		return Constraint{}, err
	}
	if len(terms) == 1 {
		return parseTerm(s, terms[0])
	}
	return parseSet(s, terms)
}

// scanTerms splits a comparator set into its terms in a single pass. Terms are separated
// by whitespace, a comma, or both. Whitespace between an operator and its version is allowed.
func scanTerms(s, input string) ([]term, error) {
	var terms []term
	pos := 0
	skipSpace := func() {
		for pos < len(input) && isSpace(input[pos]) {
			pos++
		}
	}
	for {
		skipSpace()
		if pos == len(input) {
			break
		}
		if len(terms) > 0 && input[pos] == ',' {
			pos++
			skipSpace()
			if pos == len(input) {
				return nil, malformed(s, ",", "trailing comma")
			}
		}
		var t term
		termStart := pos
		for _, op := range operators {
			if strings.HasPrefix(input[pos:], string(op)) {
				t.op = op
				pos += len(op)
				break
			}
		}
		skipSpace()
		start := pos
		for pos < len(input) && !isSpace(input[pos]) && input[pos] != ',' {
			pos++
		}
		t.value = input[start:pos]
		if t.value == "" {
			return nil, malformed(s, input[start:], "expected version")
		}
		t.text = input[termStart:pos]
		terms = append(terms, t)
	}
	return terms, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func parseTerm(s string, t term) (Constraint, error) {
	switch t.op {
	case OpTilde, OpCaret:
		v, precision, err := parsePartial(t.value)
		if err != nil {
			return Constraint{}, validation.Wrap(validation.KindMalformedConstraint, s, err)
		}
		return newComparator(t.op, v, precision), nil
	case "", "=":
		v, err := version.Parse(t.value)
		if err != nil {
			return Constraint{}, validation.Wrap(validation.KindMalformedConstraint, s, err)
		}
		return Exact(v), nil
	default:
		v, err := version.Parse(t.value)
		if err != nil {
			return Constraint{}, validation.Wrap(validation.KindMalformedConstraint, s, err)
		}
		return newComparator(t.op, v, 3), nil
	}
}

// parsePartial parses a version that may omit minor and patch, as accepted after ~ and ^.
// Omitted components are zero. Partial versions cannot carry pre-release or build metadata.
func parsePartial(value string) (version.Version, int, error) {
	v, err := version.Parse(value)
	if err == nil {
		return v, 3, nil
	}
	if strings.ContainsAny(value, "-+") {
		return version.Version{}, 0, err
	}
	var padded string
	var precision int
	switch strings.Count(value, ".") {
	case 0:
		padded, precision = value+".0.0", 1
	case 1:
		padded, precision = value+".0", 2
	default:
		return version.Version{}, 0, err
	}
	pv, perr := version.Parse(padded)
	if perr != nil {
		// report the error against the text that was actually written
		return version.Version{}, 0, err
	}
	return pv, precision, nil
}

// parseSet intersects the terms of a comparator set into a single range. If the
// intersection is empty, the term that last narrowed it is reported as offending.
func parseSet(s string, terms []term) (Constraint, error) {
	var lower, upper *Bound
	lowerTerm, upperTerm := -1, -1
	prerelease := false
	for i, t := range terms {
		c, err := parseTerm(s, t)
		if err != nil {
			return Constraint{}, err
		}
		prerelease = prerelease || c.prerelease
		l, u := c.Bounds()
		if next := tighterLower(lower, l); next != lower {
			lower, lowerTerm = next, i
		}
		if next := tighterUpper(upper, u); next != upper {
			upper, upperTerm = next, i
		}
	}
	c, err := NewRange(lower, upper)
	if err != nil {
		verr := validation.Wrap(validation.KindMalformedConstraint, s, err)
		verr.Offending = terms[max(lowerTerm, upperTerm)].text
		return Constraint{}, verr
	}
	c.prerelease = prerelease
	return c, nil
}

func tighterLower(a, b *Bound) *Bound {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	switch cmp := version.Compare(a.Version, b.Version); {
	case cmp > 0:
		return a
	case cmp < 0:
		return b
	case a.Inclusive && !b.Inclusive:
		return b
	default:
		return a
	}
}

func tighterUpper(a, b *Bound) *Bound {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	switch cmp := version.Compare(a.Version, b.Version); {
	case cmp < 0:
		return a
	case cmp > 0:
		return b
	case a.Inclusive && !b.Inclusive:
		return b
	default:
		return a
	}
}

// parseRange parses the interval notation [lower,upper], (lower,upper), mixed brackets, and
// [version] as a shorthand for an exact match. An empty side is unbounded.
func parseRange(s, input string) (Constraint, error) {
	closing := input[len(input)-1]
	if len(input) < 2 || (closing != ']' && closing != ')') {
		return Constraint{}, malformed(s, input, "range must end with ']' or ')'")
	}
	inner := input[1 : len(input)-1]
	if strings.ContainsAny(inner, "[]()") {
		return Constraint{}, malformed(s, inner, "unexpected bracket in range")
	}

	lowerText, upperText, hasComma := strings.Cut(inner, ",")
	if !hasComma {
		if input[0] != '[' || closing != ']' {
			return Constraint{}, malformed(s, input, "single version ranges must use '[' and ']'")
		}
		v, err := version.Parse(strings.TrimSpace(inner))
		if err != nil {
			return Constraint{}, validation.Wrap(validation.KindMalformedConstraint, s, err)
		}
		return Exact(v), nil
	}
	if strings.Contains(upperText, ",") {
		return Constraint{}, malformed(s, inner, "range must have exactly two bounds")
	}

	bound := func(text string, inclusive bool) (*Bound, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		v, err := version.Parse(text)
		if err != nil {
			return nil, validation.Wrap(validation.KindMalformedConstraint, s, err)
		}
		return &Bound{Version: v, Inclusive: inclusive}, nil
	}
	lower, err := bound(lowerText, input[0] == '[')
	if err != nil {
		return Constraint{}, err
	}
	upper, err := bound(upperText, closing == ']')
	if err != nil {
		return Constraint{}, err
	}
	if lower == nil && upper == nil {
		return Constraint{}, malformed(s, input, "range must have at least one bound")
	}
	c, err := NewRange(lower, upper)
	if err != nil {
		verr := validation.Wrap(validation.KindMalformedConstraint, s, err)
		verr.Offending = input
		return Constraint{}, verr
	}
	return c, nil
}

func malformed(input, offending, reason string) error {
	return validation.New(validation.KindMalformedConstraint, input, offending, reason)
}
