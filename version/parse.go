package version

import (
	"strconv"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"ocm.software/open-component-model/bindings/go/artifactory/validation"
)

var coreNames = [3]string{"major", "minor", "patch"}

// Parse parses a strict semantic version. github.com/Masterminds/semver/v3 decides
// whether s is accepted; the scanner builds the value and, on rejection, locates the
// offending substring. Every rejection yields a *validation.Error of kind
// validation.KindMalformedVersion.
func Parse(s string) (Version, error) {
	_, strictErr := semver.StrictNewVersion(s)
	v, err := scan(s)
	switch {
	case err != nil:
		return Version{}, err
	case strictErr != nil:
		return Version{}, malformed(s, s, strictErr.Error())
	}
	return v, nil
}

func scan(s string) (Version, error) {
	if s == "" {
		return Version{}, malformed(s, "", "version must not be empty")
	}

	var v Version
	var core [3]uint64
	rest := s
	for i := range core {
		end := strings.IndexAny(rest, ".-+")
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		n, err := parseNumeric(s, part, coreNames[i])
		if err != nil {
			return Version{}, err
		}
		core[i] = n
		rest = rest[end:]

		if i < 2 {
			if rest == "" {
				return Version{}, malformed(s, s, "missing "+coreNames[i+1]+" component")
			}
			if rest[0] != '.' {
				return Version{}, malformed(s, rest, "expected '.' after "+coreNames[i]+" component")
			}
			rest = rest[1:]
		}
	}
	v.major, v.minor, v.patch = core[0], core[1], core[2]

	if strings.HasPrefix(rest, "-") {
		pre := rest[1:]
		if idx := strings.IndexByte(pre, '+'); idx >= 0 {
			pre, rest = pre[:idx], pre[idx:]
		} else {
			rest = ""
		}
		ids, err := parsePrerelease(s, pre)
		if err != nil {
			return Version{}, err
		}
		v.pre = ids
	}

	if strings.HasPrefix(rest, "+") {
		build := rest[1:]
		if err := validateBuild(s, build); err != nil {
			return Version{}, err
		}
		v.build = build
		rest = ""
	}

	if rest != "" {
		return Version{}, malformed(s, rest, "unexpected characters after version")
	}
	return v, nil
}

func parseNumeric(input, part, name string) (uint64, error) {
	if part == "" {
		return 0, malformed(input, part, name+" component must not be empty")
	}
	for i := 0; i < len(part); i++ {
		if part[i] < '0' || part[i] > '9' {
			return 0, malformed(input, part, name+" component must be numeric")
		}
	}
	if len(part) > 1 && part[0] == '0' {
		return 0, malformed(input, part, name+" component must not have leading zeros")
	}
	n, err := strconv.ParseUint(part, 10, 64)
	if err != nil {
		return 0, malformed(input, part, name+" component is out of range")
	}
	return n, nil
}

func parsePrerelease(input, pre string) ([]identifier, error) {
	parts := strings.Split(pre, ".")
	ids := make([]identifier, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, malformed(input, pre, "pre-release identifiers must not be empty")
		}
		numeric := true
		for i := 0; i < len(part); i++ {
			c := part[i]
			switch {
			case c >= '0' && c <= '9':
			case isAlpha(c) || c == '-':
				numeric = false
			default:
				return nil, malformed(input, part, "pre-release identifiers may only contain [0-9A-Za-z-]")
			}
		}
		if numeric && len(part) > 1 && part[0] == '0' {
			return nil, malformed(input, part, "numeric pre-release identifiers must not have leading zeros")
		}
		ids = append(ids, identifier{value: part, numeric: numeric})
	}
	return ids, nil
}

func validateBuild(input, build string) error {
	for _, part := range strings.Split(build, ".") {
		if part == "" {
			return malformed(input, build, "build identifiers must not be empty")
		}
		for i := 0; i < len(part); i++ {
			c := part[i]
			if !(c >= '0' && c <= '9') && !isAlpha(c) && c != '-' {
				return malformed(input, part, "build identifiers may only contain [0-9A-Za-z-]")
			}
		}
	}
	return nil
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func malformed(input, offending, reason string) error {
	return validation.New(validation.KindMalformedVersion, input, offending, reason)
}

// ParseLenient accepts the loose version tags found in older repositories, such as
// "v1.2" or "1", by coercing them with github.com/Masterminds/semver/v3. The coerced
// version is then validated with Parse, so the result is always a canonical version.
// Use Parse for user input; ParseLenient is meant for ingesting existing tags.
func ParseLenient(s string) (Version, error) {
	if v, err := Parse(s); err == nil {
		return v, nil
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, malformed(s, s, err.Error())
	}
	v, err := Parse(sv.String())
	if err != nil {
		return Version{}, validation.Wrap(validation.KindMalformedVersion, s, err)
	}
	return v, nil
}
