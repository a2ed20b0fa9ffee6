package artifact_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm.software/open-component-model/bindings/go/artifactory/artifact"
	"ocm.software/open-component-model/bindings/go/artifactory/coordinate"
	"ocm.software/open-component-model/bindings/go/artifactory/digest"
	"ocm.software/open-component-model/bindings/go/artifactory/validation"
)

var createdAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewManifest(t *testing.T) {
	m, err := artifact.NewManifest("svc-1", "konfigyr-api", createdAt,
		newArtifact("org.springframework.boot/spring-boot@3.4.0"),
		newArtifact("com.konfigyr/konfigyr-crypto-api@1.0.0"),
		newArtifact("com.konfigyr/konfigyr-api@1.0.0"),
	)
	require.NoError(t, err)

	var keys []string
	for _, a := range m.Artifacts {
		keys = append(keys, a.Coordinate.Key())
	}
	assert.Equal(t, []string{
		"com.konfigyr/konfigyr-api",
		"com.konfigyr/konfigyr-crypto-api",
		"org.springframework.boot/spring-boot",
	}, keys)

	assert.True(t, m.Contains(coordinate.MustParse("com.konfigyr/konfigyr-api@1.0.0")))
	assert.False(t, m.Contains(coordinate.MustParse("com.konfigyr/konfigyr-api@1.0.1")))
	assert.False(t, m.Contains(coordinate.MustParse("com.konfigyr/konfigyr-web@1.0.0")))

	found, ok := m.Find("org.springframework.boot", "spring-boot")
	require.True(t, ok)
	assert.Equal(t, "3.4.0", found.Coordinate.Version().String())
	_, ok = m.Find("org.springframework.boot", "spring-web")
	assert.False(t, ok)
}

func TestNewManifestValidation(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		title     string
		artifacts []artifact.Artifact
		err       assert.ErrorAssertionFunc
	}{
		{name: "empty", id: "svc", title: "service", err: assert.NoError},
		{name: "blank id", id: " ", title: "service", err: assert.Error},
		{name: "blank name", id: "svc", title: "", err: assert.Error},
		{
			name:      "duplicate artifact",
			id:        "svc",
			title:     "service",
			artifacts: []artifact.Artifact{newArtifact("acme/widget@1.0.0"), newArtifact("acme/widget@2.0.0")},
			err:       assert.Error,
		},
		{
			name:      "invalid artifact",
			id:        "svc",
			title:     "service",
			artifacts: []artifact.Artifact{{}},
			err:       assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := artifact.NewManifest(tt.id, tt.title, time.Time{}, tt.artifacts...)
			if tt.err(t, err) && err == nil {
				assert.False(t, m.CreatedAt.IsZero())
				assert.NotNil(t, m.Artifacts)
			}
		})
	}
}

func TestManifestDigest(t *testing.T) {
	a := newArtifact("acme/widget@1.0.0")
	b := newArtifact("acme/gadget@2.0.0")

	m1, err := artifact.NewManifest("svc", "service", createdAt, a, b)
	require.NoError(t, err)
	m2 := &artifact.Manifest{ID: "svc", Name: "service", CreatedAt: createdAt, Artifacts: []artifact.Artifact{a, b}}

	d1, err := m1.Digest(digest.SHA256)
	require.NoError(t, err)
	d2, err := m2.Digest(digest.SHA256)
	require.NoError(t, err)
	assert.True(t, d1.Equal(d2), "artifact order must not change the digest")
	assert.Equal(t, "acme/widget@1.0.0", m2.Artifacts[0].String(), "digest must not reorder the manifest")

	blake, err := m1.Digest(digest.BLAKE3)
	require.NoError(t, err)
	assert.Equal(t, digest.BLAKE3, blake.Algorithm())

	m2.Name = "other"
	d3, err := m2.Digest(digest.SHA256)
	require.NoError(t, err)
	assert.False(t, d1.Equal(d3))

	expected := `{"artifacts":[{"coordinate":"acme/gadget@2.0.0"},{"coordinate":"acme/widget@1.0.0"}],` +
		`"created_at":"2026-03-01T12:00:00Z","id":"svc","name":"service"}`
	assert.True(t, d1.Matches([]byte(expected)), "digest is computed over canonical JSON")
}

func TestDecodeManifest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   assert.ErrorAssertionFunc
		check func(t *testing.T, m *artifact.Manifest)
	}{
		{
			name: "json",
			input: `{
				"id": "svc-1",
				"name": "konfigyr-api",
				"created_at": "2026-03-01T12:00:00Z",
				"artifacts": [
					{"coordinate": "com.konfigyr/konfigyr-api@1.0.0", "display_name": "Konfigyr API"},
					{"coordinate": "com.konfigyr/konfigyr-crypto-api@1.0.0"}
				]
			}`,
			err: assert.NoError,
			check: func(t *testing.T, m *artifact.Manifest) {
				assert.Equal(t, "svc-1", m.ID)
				assert.Equal(t, createdAt, m.CreatedAt)
				require.Len(t, m.Artifacts, 2)
				assert.Equal(t, "Konfigyr API", m.Artifacts[0].DisplayName)
			},
		},
		{
			name: "yaml",
			input: `
id: svc-2
name: widget-service
created_at: "2026-03-01T12:00:00Z"
artifacts:
  - coordinate: acme/widget@2.0.0
    website: https://widget.example.com
  - coordinate: acme/gadget@1.0.0-rc.1
`,
			err: assert.NoError,
			check: func(t *testing.T, m *artifact.Manifest) {
				require.Len(t, m.Artifacts, 2)
				assert.Equal(t, "acme/gadget@1.0.0-rc.1", m.Artifacts[0].String(), "artifacts are sorted")
				assert.True(t, m.Contains(coordinate.MustParse("acme/widget@2.0.0")))
			},
		},
		{
			name:  "missing artifacts",
			input: `{"id": "svc", "name": "service"}`,
			err:   assert.Error,
		},
		{
			name:  "unknown field",
			input: `{"id": "svc", "name": "service", "artifacts": [], "owner": "me"}`,
			err:   assert.Error,
		},
		{
			name:  "empty id",
			input: `{"id": "", "name": "service", "artifacts": []}`,
			err:   assert.Error,
		},
		{
			name:  "coordinate without version",
			input: `{"id": "svc", "name": "service", "artifacts": [{"coordinate": "acme/widget"}]}`,
			err:   assert.Error,
		},
		{
			name:  "malformed version",
			input: `{"id": "svc", "name": "service", "artifacts": [{"coordinate": "acme/widget@1.0"}]}`,
			err: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, validation.ErrMalformedVersion)
			},
		},
		{
			name:  "duplicate artifact",
			input: `{"id": "svc", "name": "service", "artifacts": [{"coordinate": "acme/widget@1.0.0"}, {"coordinate": "acme/widget@1.1.0"}]}`,
			err:   assert.Error,
		},
		{
			name:  "not a document",
			input: `{"id": "svc"`,
			err:   assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := artifact.DecodeManifest([]byte(tt.input))
			if !tt.err(t, err) || err != nil {
				return
			}
			require.NotNil(t, m)
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}
