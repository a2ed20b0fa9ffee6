package digest

import (
	"fmt"
)

// Verify checks that data hashes to the expected digest.
// It returns an error wrapping ErrMismatch that names both the expected and the actual digest.
func Verify(expected Digest, data []byte) error {
	if expected.IsZero() {
		return fmt.Errorf("expected digest is empty")
	}
	if expected.Matches(data) {
		return nil
	}
	actual, err := FromBytes(expected.algorithm, data)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: expected %s, got %s", ErrMismatch, expected, actual)
}

// VerifyLegacy checks a digest given as legacy algorithm name and hex value, as stored in
// older descriptors (e.g. "SHA-256" and "<hex>"), against an OCI digest.
func VerifyLegacy(hashAlgorithm, value string, actual Digest) error {
	expected, err := Parse(hashAlgorithm, value)
	if err != nil {
		return err
	}
	if expected.algorithm != actual.algorithm {
		return fmt.Errorf("hash algorithm mismatch: expected %s, got %s", expected.algorithm, actual.algorithm)
	}
	if expected != actual {
		return fmt.Errorf("%w: expected %s, got %s", ErrMismatch, expected, actual)
	}
	return nil
}
