package artifact

import (
	"fmt"
	"slices"

	"ocm.software/open-component-model/bindings/go/artifactory/digest"
)

// Metadata is the configuration metadata extracted from an artifact release.
type Metadata struct {
	Artifact   Artifact             `json:"artifact"`
	Checksum   digest.Digest        `json:"checksum"`
	Properties []PropertyDescriptor `json:"properties"`
}

// NewMetadata creates metadata for the artifact. The checksum is computed over the encoded
// property list, so equal property sets always share a checksum.
func NewMetadata(a Artifact, properties []PropertyDescriptor) (*Metadata, error) {
	data, err := EncodeProperties(properties)
	if err != nil {
		return nil, err
	}
	checksum, err := digest.FromBytes(digest.Canonical, data)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(properties)
	slices.SortStableFunc(sorted, CompareProperties)
	return &Metadata{Artifact: a, Checksum: checksum, Properties: sorted}, nil
}

// Property looks up a property by name.
func (m *Metadata) Property(name string) (PropertyDescriptor, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDescriptor{}, false
}

// Validate checks the artifact and the property list, and that the checksum matches the
// encoded properties.
func (m *Metadata) Validate() error {
	if err := m.Artifact.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(m.Properties))
	for _, p := range m.Properties {
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate property %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	data, err := EncodeProperties(m.Properties)
	if err != nil {
		return err
	}
	if err := digest.Verify(m.Checksum, data); err != nil {
		return fmt.Errorf("metadata checksum of %s: %w", m.Artifact, err)
	}
	return nil
}
