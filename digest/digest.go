// Package digest provides immutable content digests tagged with their hash algorithm.
//
// A [Digest] is created once when content is ingested and is used by storage layers to
// verify uploaded content. The SHA-2 family is backed by github.com/opencontainers/go-digest
// so that digests interoperate with OCI registries, BLAKE3 is backed by github.com/zeebo/blake3.
package digest

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	godigest "github.com/opencontainers/go-digest"

	"ocm.software/open-component-model/bindings/go/artifactory/validation"
)

// ErrMismatch is returned by Verify when content does not hash to the expected digest.
var ErrMismatch = errors.New("digest mismatch")

// Digest is a content hash together with the algorithm that produced it.
// Digests are comparable, two digests are equal if and only if algorithm and value are equal.
// The zero Digest is not valid and is only used as "no digest".
type Digest struct {
	algorithm Algorithm
	// encoded is the lowercase hex encoding of the hash value.
	encoded string
}

// Parse creates a digest from an algorithm name and a hex encoded value.
// The value is accepted in either case and stored lowercase.
func Parse(algorithm, encoded string) (Digest, error) {
	input := algorithm + ":" + encoded
	alg, ok := LookupAlgorithm(algorithm)
	if !ok || !alg.Available() {
		return Digest{}, validation.New(validation.KindMalformedDigest, input, algorithm, "unsupported digest algorithm")
	}
	encoded = strings.ToLower(encoded)
	if err := alg.validate(encoded); err != nil {
		switch {
		case errors.Is(err, godigest.ErrDigestInvalidLength):
			return Digest{}, validation.New(validation.KindMalformedDigest, input, encoded,
				fmt.Sprintf("%s digest must have %d hex characters, got %d", alg, alg.Size()*2, len(encoded)))
		default:
			return Digest{}, validation.New(validation.KindMalformedDigest, input, encoded, "digest value is not hex encoded")
		}
	}
	return Digest{algorithm: alg, encoded: encoded}, nil
}

// ParseString parses a digest in the "<algorithm>:<hex>" form used by OCI.
func ParseString(s string) (Digest, error) {
	alg, encoded, ok := strings.Cut(s, ":")
	if !ok {
		return Digest{}, validation.New(validation.KindMalformedDigest, s, s, `expected "<algorithm>:<hex>"`)
	}
	d, err := Parse(alg, encoded)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			verr.Input = s
		}
		return Digest{}, err
	}
	return d, nil
}

// MustParseString is like ParseString but panics on error.
func MustParseString(s string) Digest {
	d, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromBytes computes the digest of data with the given algorithm.
func FromBytes(algorithm Algorithm, data []byte) (Digest, error) {
	if !algorithm.Available() {
		return Digest{}, validation.New(validation.KindMalformedDigest, algorithm.String(), algorithm.String(), "unsupported digest algorithm")
	}
	return Digest{algorithm: algorithm, encoded: hex.EncodeToString(sum(algorithm, data))}, nil
}

// FromOCI converts a go-digest digest.
func FromOCI(d godigest.Digest) (Digest, error) {
	return ParseString(d.String())
}

func sum(algorithm Algorithm, data []byte) []byte {
	h := algorithm.Hash()
	// hash.Hash never returns an error on Write
	_, _ = h.Write(data)
	return h.Sum(nil)
}

func (d Digest) Algorithm() Algorithm {
	return d.algorithm
}

// Encoded returns the lowercase hex encoding of the hash value.
func (d Digest) Encoded() string {
	return d.encoded
}

// Bytes returns a copy of the raw hash value.
func (d Digest) Bytes() []byte {
	b, _ := hex.DecodeString(d.encoded)
	return b
}

func (d Digest) IsZero() bool {
	return d.algorithm == "" && d.encoded == ""
}

func (d Digest) Equal(o Digest) bool {
	return d == o
}

func (d Digest) String() string {
	if d.IsZero() {
		return ""
	}
	return d.algorithm.String() + ":" + d.encoded
}

// OCI returns the digest as a go-digest value.
func (d Digest) OCI() godigest.Digest {
	return godigest.NewDigestFromEncoded(godigest.Algorithm(d.algorithm), d.encoded)
}

// Matches recomputes the hash of data and compares it to the digest in constant time.
func (d Digest) Matches(data []byte) bool {
	if d.IsZero() || !d.algorithm.Available() {
		return false
	}
	return subtle.ConstantTimeCompare(sum(d.algorithm, data), d.Bytes()) == 1
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Digest{}
		return nil
	}
	parsed, err := ParseString(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
