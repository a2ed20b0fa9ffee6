package artifact

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"

	"ocm.software/open-component-model/bindings/go/artifactory/coordinate"
	"ocm.software/open-component-model/bindings/go/artifactory/digest"
)

//go:embed schemas/manifest.schema.json
var manifestSchemaJSON []byte

var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(manifestSchemaJSON))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("manifest.schema.json")
})

// Manifest lists the artifacts a service is built from.
type Manifest struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at,omitzero"`
	Artifacts []Artifact `json:"artifacts"`
}

// NewManifest creates a manifest with its artifacts sorted by coordinate.
// A zero createdAt is replaced with the current time.
func NewManifest(id, name string, createdAt time.Time, artifacts ...Artifact) (*Manifest, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	m := &Manifest{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		Artifacts: slices.Clone(artifacts),
	}
	if m.Artifacts == nil {
		m.Artifacts = []Artifact{}
	}
	slices.SortStableFunc(m.Artifacts, Compare)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the manifest identity and every artifact in it. An artifact may only be
// listed once per namespace and name.
func (m *Manifest) Validate() error {
	var errs []error
	if strings.TrimSpace(m.ID) == "" {
		errs = append(errs, errors.New("manifest id must not be blank"))
	}
	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, errors.New("manifest name must not be blank"))
	}
	seen := make(map[string]struct{}, len(m.Artifacts))
	for i, a := range m.Artifacts {
		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("artifact at index %d: %w", i, err))
			continue
		}
		key := a.Coordinate.Key()
		if _, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("artifact %s is listed more than once", key))
		}
		seen[key] = struct{}{}
	}
	return errors.Join(errs...)
}

// Contains reports whether the manifest lists exactly the given release.
func (m *Manifest) Contains(c coordinate.Coordinate) bool {
	return slices.ContainsFunc(m.Artifacts, func(a Artifact) bool {
		return a.Coordinate.Equal(c)
	})
}

// Find returns the artifact with the given namespace and name, regardless of its version.
func (m *Manifest) Find(namespace, name string) (Artifact, bool) {
	for _, a := range m.Artifacts {
		if a.Coordinate.Namespace() == namespace && a.Coordinate.Name() == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Digest hashes the RFC 8785 canonical JSON form of the manifest. The order in which
// artifacts were added does not change the digest.
func (m *Manifest) Digest(algorithm digest.Algorithm) (digest.Digest, error) {
	sorted := *m
	sorted.Artifacts = slices.Clone(m.Artifacts)
	slices.SortStableFunc(sorted.Artifacts, Compare)

	data, err := json.Marshal(sorted)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("could not canonicalize manifest: %w", err)
	}
	return digest.FromBytes(algorithm, canonical)
}

// DecodeManifest decodes a manifest given as JSON or YAML. The document is validated against
// the manifest JSON schema before it is decoded.
func DecodeManifest(data []byte) (*Manifest, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert manifest to JSON: %w", err)
	}

	schema, err := manifestSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("manifest does not match schema: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	slices.SortStableFunc(m.Artifacts, Compare)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
