// Package coordinate provides the canonical identity of a stored artifact release.
//
// The text form of a coordinate is
//
//	<namespace>/<name>@<version>
//
// where namespace and name are identifiers (see IdentifierRegex) and version follows the
// grammar of the version package.
package coordinate

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"

	"ocm.software/open-component-model/bindings/go/artifactory/validation"
	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

const (
	// IdentifierRegex is the grammar of namespaces and names: alphanumeric segments joined
	// by single '.', '_' or '-' separators.
	IdentifierRegex = `^[A-Za-z0-9]+(?:[._-][A-Za-z0-9]+)*$`

	// MaxIdentifierLength limits namespaces and names so they can be used as storage keys.
	MaxIdentifierLength = 255
)

var identifierRegex = regexp.MustCompile(IdentifierRegex)

// Coordinate identifies one artifact release within a namespace. Coordinates are immutable.
type Coordinate struct {
	namespace string
	name      string
	version   version.Version
}

// New creates a coordinate from its parts, validating both identifiers.
func New(namespace, name string, v version.Version) (Coordinate, error) {
	input := namespace + "/" + name + "@" + v.String()
	if err := validateIdentifier(input, namespace, "namespace"); err != nil {
		return Coordinate{}, err
	}
	if err := validateIdentifier(input, name, "name"); err != nil {
		return Coordinate{}, err
	}
	return Coordinate{namespace: namespace, name: name, version: v}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse parses "<namespace>/<name>@<version>".
// Identifier violations fail with validation.ErrInvalidIdentifier, a malformed or missing
// version fails with validation.ErrMalformedVersion.
func Parse(input string) (Coordinate, error) {
	ref, versionPart, found := strings.Cut(input, "@")

	namespace, name, ok := strings.Cut(ref, "/")
	if !ok {
		return Coordinate{}, validation.New(validation.KindInvalidIdentifier, input, ref, `expected "<namespace>/<name>"`)
	}
	if err := validateIdentifier(input, namespace, "namespace"); err != nil {
		return Coordinate{}, err
	}
	if err := validateIdentifier(input, name, "name"); err != nil {
		return Coordinate{}, err
	}

	if !found {
		return Coordinate{}, validation.New(validation.KindMalformedVersion, input, "", `missing "@<version>"`)
	}
	v, err := version.Parse(versionPart)
	if err != nil {
		return Coordinate{}, validation.Wrap(validation.KindMalformedVersion, input, err)
	}

	return Coordinate{namespace: namespace, name: name, version: v}, nil
}

// ValidateIdentifier checks a namespace or name against IdentifierRegex.
func ValidateIdentifier(s string) error {
	return validateIdentifier(s, s, "identifier")
}

func validateIdentifier(input, id, what string) error {
	switch {
	case id == "":
		return validation.New(validation.KindInvalidIdentifier, input, id, what+" must not be empty")
	case len(id) > MaxIdentifierLength:
		return validation.New(validation.KindInvalidIdentifier, input, id, fmt.Sprintf("%s must not be longer than %d characters", what, MaxIdentifierLength))
	case !identifierRegex.MatchString(id):
		return validation.New(validation.KindInvalidIdentifier, input, id, fmt.Sprintf("%s must match %q", what, IdentifierRegex))
	}
	return nil
}

func (c Coordinate) Namespace() string { return c.namespace }
func (c Coordinate) Name() string { return c.name }
func (c Coordinate) Version() version.Version { return c.version }
func (c Coordinate) IsZero() bool { return c.namespace == "" && c.name == "" }
func (c Coordinate) Key() string { return c.namespace + "/" + c.name }
func (c Coordinate) WithVersion(v version.Version) Coordinate {
	c.version = v
	return c
}

func (c Coordinate) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Key() + "@" + c.version.String()
}

// Compare orders coordinates by namespace, then name, then version.
func Compare(a, b Coordinate) int {
	if c := cmp.Compare(a.namespace, b.namespace); c != 0 {
		return c
	}
	if c := cmp.Compare(a.name, b.name); c != 0 {
		return c
	}
	return version.Compare(a.version, b.version)
}

func (c Coordinate) Compare(o Coordinate) int {
	return Compare(c, o)
}

// Equal reports whether both coordinates identify the same release. Build metadata of the
// versions is ignored.
func (c Coordinate) Equal(o Coordinate) bool {
	return Compare(c, o) == 0
}

func (c Coordinate) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText maps empty text to the zero Coordinate, mirroring MarshalText.
func (c *Coordinate) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = Coordinate{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
