// Package artifact contains the records an artifact repository keeps about the artifacts it
// stores: the artifact itself, its releases, the configuration properties it declares and
// the manifests of services that depend on it.
package artifact

import (
	"errors"
	"fmt"
	"net/url"

	"ocm.software/open-component-model/bindings/go/artifactory/coordinate"
)

// Artifact describes a single artifact release and where it comes from.
type Artifact struct {
	Coordinate  coordinate.Coordinate `json:"coordinate"`
	DisplayName string                `json:"display_name,omitempty"`
	Description string                `json:"description,omitempty"`
	Website     string                `json:"website,omitempty"`
	Repository  string                `json:"repository,omitempty"`
}

// Validate checks that the artifact has a coordinate and that its links are absolute URLs.
func (a Artifact) Validate() error {
	var errs []error
	if a.Coordinate.IsZero() {
		errs = append(errs, errors.New("artifact coordinate must not be empty"))
	}
	if err := validateURL("website", a.Website); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("repository", a.Repository); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s URL: %w", field, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s URL %q must be absolute", field, raw)
	}
	return nil
}

// Compare orders artifacts by their coordinates.
func Compare(a, b Artifact) int {
	return coordinate.Compare(a.Coordinate, b.Coordinate)
}

func (a Artifact) String() string {
	return a.Coordinate.String()
}
