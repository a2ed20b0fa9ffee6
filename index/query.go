package index

import (
	"strings"

	"ocm.software/open-component-model/bindings/go/artifactory/constraint"
	"ocm.software/open-component-model/bindings/go/artifactory/coordinate"
	"ocm.software/open-component-model/bindings/go/artifactory/validation"
)

// Query asks for the best release of an artifact satisfying a constraint.
type Query struct {
	Namespace  string
	Name       string
	Constraint constraint.Constraint
}

// ParseQuery parses "<namespace>/<name>@<constraint>". Without "@<constraint>" any version
// is accepted.
func ParseQuery(s string) (Query, error) {
	ref, raw, found := strings.Cut(s, "@")

	namespace, name, ok := strings.Cut(ref, "/")
	if !ok {
		return Query{}, validation.New(validation.KindInvalidIdentifier, s, ref, `expected "<namespace>/<name>"`)
	}
	for _, id := range []string{namespace, name} {
		if err := coordinate.ValidateIdentifier(id); err != nil {
			return Query{}, validation.Wrap(validation.KindInvalidIdentifier, s, err)
		}
	}

	c := constraint.Any()
	if found {
		var err error
		if c, err = constraint.Parse(raw); err != nil {
			return Query{}, validation.Wrap(validation.KindMalformedConstraint, s, err)
		}
	}
	return Query{Namespace: namespace, Name: name, Constraint: c}, nil
}

// MustParseQuery is like ParseQuery but panics on error.
func MustParseQuery(s string) Query {
	q, err := ParseQuery(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Query) Key() string {
	return q.Namespace + "/" + q.Name
}

func (q Query) String() string {
	return q.Key() + "@" + q.Constraint.String()
}
