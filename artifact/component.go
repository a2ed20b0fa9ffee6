package artifact

import (
	"bytes"
	"errors"
	"io"

	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

// Component is what gets uploaded to draft a release: the version of the release, whether
// it becomes the latest one, and the property descriptors declared by that version.
type Component struct {
	Version    version.Version
	Latest     bool
	Properties []PropertyDescriptor
}

// NewComponent creates a component from property descriptors encoded with EncodeProperties.
func NewComponent(v version.Version, latest bool, data []byte) (*Component, error) {
	return ReadComponent(v, latest, bytes.NewReader(data))
}

// ReadComponent is like NewComponent but reads the property descriptors from r.
func ReadComponent(v version.Version, latest bool, r io.Reader) (*Component, error) {
	properties, err := ReadProperties(r)
	if err != nil {
		return nil, err
	}
	return &Component{Version: v, Latest: latest, Properties: properties}, nil
}

// Encode returns the property descriptors in the format read by NewComponent.
func (c *Component) Encode() ([]byte, error) {
	return EncodeProperties(c.Properties)
}

// Release drafts a pending release of the component. The artifact's coordinate names the
// release, its version is replaced by the component's.
func (c *Component) Release(a Artifact) (*Release, error) {
	if a.Coordinate.IsZero() {
		return nil, errors.New("artifact coordinate must not be empty")
	}
	a.Coordinate = a.Coordinate.WithVersion(c.Version)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	r := NewRelease(a)
	r.Latest = c.Latest
	return r, nil
}
