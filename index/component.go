package index

import (
	"context"
	"errors"
	"fmt"
)

// ComponentVersionLister is the listing part of an OCM component version repository, where
// components are named "<namespace>/<name>" (e.g. "ocm.software/toi").
type ComponentVersionLister interface {
	ListComponentVersions(ctx context.Context, component string) ([]string, error)
}

// Components adapts a component version repository to a VersionLister.
type Components struct {
	Repository ComponentVersionLister
	// NotFound is the error the repository reports for unknown components. Errors matching
	// it are reported as ErrNotFound.
	NotFound error
}

var _ VersionLister = (*Components)(nil)

func (c *Components) ListVersions(ctx context.Context, namespace, name string) ([]string, error) {
	component := namespace + "/" + name
	versions, err := c.Repository.ListComponentVersions(ctx, component)
	if err != nil {
		if c.NotFound != nil && errors.Is(err, c.NotFound) {
			return nil, fmt.Errorf("component %s: %w", component, errors.Join(ErrNotFound, err))
		}
		return nil, fmt.Errorf("listing component versions for %s failed: %w", component, err)
	}
	return versions, nil
}
