package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"
)

// Union lists the versions known to any of its listers. Listers are queried concurrently.
// The result is deduplicated and keeps the order of the listers, so earlier listers take
// priority when tags are ordered for display.
type Union struct {
	listers []VersionLister
	limit   int
}

var _ VersionLister = (*Union)(nil)

// NewUnion combines listers. A limit of zero or less queries all listers at once.
func NewUnion(limit int, listers ...VersionLister) *Union {
	if limit <= 0 {
		limit = -1
	}
	return &Union{listers: listers, limit: limit}
}

// ListVersions fails with ErrNotFound only if no lister knows the artifact.
func (u *Union) ListVersions(ctx context.Context, namespace, name string) ([]string, error) {
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "index"))

	perLister := make([][]string, len(u.listers))
	var mu sync.Mutex
	found := false

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(u.limit)
	for i, l := range u.listers {
		eg.Go(func() error {
			versions, err := l.ListVersions(ctx, namespace, name)
			if errors.Is(err, ErrNotFound) {
				logger.DebugContext(ctx, "artifact not found in lister", slog.Int("lister", i), slog.String("artifact", namespace+"/"+name))
				return nil
			}
			if err != nil {
				return err
			}
			perLister[i] = versions
			mu.Lock()
			found = true
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("artifact %s/%s: %w", namespace, name, ErrNotFound)
	}

	seen := make(map[string]struct{})
	var versions []string
	for _, vs := range perLister {
		for _, v := range vs {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			versions = append(versions, v)
		}
	}
	return versions, nil
}
