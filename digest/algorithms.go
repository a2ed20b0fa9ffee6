package digest

import (
	_ "crypto/sha256"
	_ "crypto/sha512"
	"hash"
	"strings"

	godigest "github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"
)

// Algorithm identifies a hash function used for content digests.
type Algorithm string

const (
	SHA256 Algorithm = Algorithm(godigest.SHA256)
	SHA384 Algorithm = Algorithm(godigest.SHA384)
	SHA512 Algorithm = Algorithm(godigest.SHA512)
	BLAKE3 Algorithm = "blake3"

	// Canonical is the algorithm used when none is specified.
	Canonical = SHA256
)

const (
	HashAlgorithmSHA256Legacy = "SHA-256"
	HashAlgorithmSHA512Legacy = "SHA-512"
)

// algorithmNames maps every accepted spelling to its algorithm. The legacy
// upper-case names are still used by older descriptors.
var algorithmNames = map[string]Algorithm{
	HashAlgorithmSHA256Legacy: SHA256,
	HashAlgorithmSHA512Legacy: SHA512,
	SHA256.String():           SHA256,
	SHA384.String():           SHA384,
	SHA512.String():           SHA512,
	BLAKE3.String():           BLAKE3,
}

// LegacyNames maps algorithms to the upper-case names used by older descriptors.
var LegacyNames = map[Algorithm]string{
	SHA256: HashAlgorithmSHA256Legacy,
	SHA512: HashAlgorithmSHA512Legacy,
}

// Algorithms returns all supported algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA384, SHA512, BLAKE3}
}

// LookupAlgorithm resolves an algorithm by name. Both the canonical lower-case
// names and the legacy names are accepted.
func LookupAlgorithm(name string) (Algorithm, bool) {
	if a, ok := algorithmNames[name]; ok {
		return a, true
	}
	a, ok := algorithmNames[strings.ToLower(name)]
	return a, ok
}

func (a Algorithm) String() string {
	return string(a)
}

// Available reports whether the algorithm is known and linked into the binary.
func (a Algorithm) Available() bool {
	switch a {
	case BLAKE3:
		return true
	case SHA256, SHA384, SHA512:
		return godigest.Algorithm(a).Available()
	}
	return false
}

// Size returns the length of a digest value in bytes, or 0 for an unknown algorithm.
func (a Algorithm) Size() int {
	switch a {
	case BLAKE3:
		return 32
	case SHA256, SHA384, SHA512:
		return godigest.Algorithm(a).Size()
	}
	return 0
}

// Hash returns a new hash function for the algorithm. It panics for unknown algorithms,
// callers are expected to check Available first.
func (a Algorithm) Hash() hash.Hash {
	if a == BLAKE3 {
		return blake3.New()
	}
	return godigest.Algorithm(a).Hash()
}

// validate checks that encoded is a well-formed lowercase hex value for the algorithm.
func (a Algorithm) validate(encoded string) error {
	if a == BLAKE3 {
		if len(encoded) != a.Size()*2 {
			return godigest.ErrDigestInvalidLength
		}
		for _, c := range encoded {
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				return godigest.ErrDigestInvalidFormat
			}
		}
		return nil
	}
	return godigest.Algorithm(a).Validate(encoded)
}
