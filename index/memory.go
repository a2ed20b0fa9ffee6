package index

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	slogcontext "github.com/veqryn/slog-context"

	"ocm.software/open-component-model/bindings/go/artifactory/coordinate"
)

// Memory is an in-memory VersionLister. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	versions map[string][]string
}

var _ VersionLister = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{versions: make(map[string][]string)}
}

// Add registers releases. Adding a release twice has no effect.
func (m *Memory) Add(coords ...coordinate.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range coords {
		m.addLocked(c.Namespace(), c.Name(), c.Version().String())
	}
}

// AddTag registers a raw version tag as it would be reported by a remote repository. The tag
// is not validated.
func (m *Memory) AddTag(namespace, name, tag string) error {
	for _, id := range []string{namespace, name} {
		if err := coordinate.ValidateIdentifier(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(namespace, name, tag)
	return nil
}

func (m *Memory) addLocked(namespace, name, tag string) {
	key := namespace + "/" + name
	if !slices.Contains(m.versions[key], tag) {
		m.versions[key] = append(m.versions[key], tag)
	}
}

// ListVersions returns the tags registered for an artifact in insertion order.
func (m *Memory) ListVersions(_ context.Context, namespace, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tags, ok := m.versions[namespace+"/"+name]
	if !ok {
		return nil, fmt.Errorf("artifact %s/%s: %w", namespace, name, ErrNotFound)
	}
	return slices.Clone(tags), nil
}

// Search returns the sorted keys of all artifacts matching the pattern.
func (m *Memory) Search(ctx context.Context, pattern coordinate.Pattern) []string {
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "index"))

	m.mu.RLock()
	var keys []string
	for key := range m.versions {
		if pattern.MatchKey(key) {
			keys = append(keys, key)
		}
	}
	total := len(m.versions)
	m.mu.RUnlock()

	slices.Sort(keys)
	logger.DebugContext(ctx, "searched artifacts", slog.String("pattern", pattern.String()), slog.Int("matches", len(keys)), slog.Int("total", total))
	return keys
}
