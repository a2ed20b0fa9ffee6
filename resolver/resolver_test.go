package resolver_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slogcontext "github.com/veqryn/slog-context"

	"ocm.software/open-component-model/bindings/go/artifactory/constraint"
	"ocm.software/open-component-model/bindings/go/artifactory/resolver"
	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

func versions(t *testing.T, raw ...string) []version.Version {
	t.Helper()
	vs := make([]version.Version, 0, len(raw))
	for _, s := range raw {
		v, err := version.Parse(s)
		require.NoError(t, err)
		vs = append(vs, v)
	}
	return vs
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		candidates []string
		opts       []resolver.Option
		expected   string
	}{
		{
			name:       "greater or equal picks the highest",
			constraint: ">=1.0.0",
			candidates: []string{"1.0.0", "1.5.0", "2.0.0"},
			expected:   "2.0.0",
		},
		{
			name:       "no candidate below",
			constraint: "<1.0.0",
			candidates: []string{"1.0.0", "2.0.0"},
		},
		{
			name:       "empty candidates",
			constraint: "*",
		},
		{
			name:       "caret stays within major",
			constraint: "^1.2.3",
			candidates: []string{"1.2.0", "1.2.3", "1.9.0", "2.0.0"},
			expected:   "1.9.0",
		},
		{
			name:       "tilde stays within minor",
			constraint: "~1.2.3",
			candidates: []string{"1.2.9", "1.3.0"},
			expected:   "1.2.9",
		},
		{
			name:       "exact",
			constraint: "1.5.0",
			candidates: []string{"1.0.0", "1.5.0", "2.0.0"},
			expected:   "1.5.0",
		},
		{
			name:       "pre-release is a candidate by default",
			constraint: ">=1.0.0",
			candidates: []string{"1.0.0", "2.0.0-rc.1"},
			expected:   "2.0.0-rc.1",
		},
		{
			name:       "pre-releases dropped",
			constraint: ">=1.0.0",
			candidates: []string{"1.0.0", "2.0.0-rc.1"},
			opts:       []resolver.Option{resolver.WithoutPrereleases()},
			expected:   "1.0.0",
		},
		{
			name:       "pre-releases kept when named by the constraint",
			constraint: ">=2.0.0-rc.1",
			candidates: []string{"1.0.0", "2.0.0-rc.1", "2.0.0-rc.2"},
			opts:       []resolver.Option{resolver.WithoutPrereleases()},
			expected:   "2.0.0-rc.2",
		},
		{
			name:       "range",
			constraint: "[1.0.0,2.0.0)",
			candidates: []string{"0.9.0", "1.0.0", "1.99.0", "2.0.0"},
			expected:   "1.99.0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := constraint.Parse(tc.constraint)
			require.NoError(t, err)
			v, ok := resolver.Resolve(c, versions(t, tc.candidates...), tc.opts...)
			if tc.expected == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.expected, v.String())
		})
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	c := constraint.MustParse("^1.0.0")
	candidates := versions(t, "0.9.0", "1.0.0", "1.0.1+b", "1.4.2", "1.4.2+z", "1.4.2+a", "1.4.2-rc.1", "2.0.0", "1.4.2")

	expected, ok := resolver.Resolve(c, candidates)
	require.True(t, ok)
	assert.Equal(t, "1.4.2", expected.String())

	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		shuffled := append([]version.Version(nil), candidates...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		v, ok := resolver.Resolve(c, shuffled)
		require.True(t, ok)
		assert.Equal(t, expected.String(), v.String())
	}
}

func TestResolveDuplicates(t *testing.T) {
	c := constraint.MustParse(">=1.0.0")
	once, _ := resolver.Resolve(c, versions(t, "1.0.0", "1.2.0"))
	twice, _ := resolver.Resolve(c, versions(t, "1.0.0", "1.2.0", "1.2.0", "1.0.0"))
	assert.True(t, once.Equal(twice))
}

func TestMatching(t *testing.T) {
	c := constraint.MustParse(">1.0.0 <2.0.0")
	matched := resolver.Matching(c, versions(t, "2.0.0", "1.5.0", "1.0.0", "1.1.0-alpha", "1.1.0"))
	var got []string
	for _, v := range matched {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"1.1.0-alpha", "1.1.0", "1.5.0"}, got)

	assert.Empty(t, resolver.Matching(c, nil))
	assert.Len(t, resolver.Matching(c, versions(t, "1.1.0-alpha", "1.5.0"), resolver.WithoutPrereleases()), 1)

	t.Run("build metadata", func(t *testing.T) {
		for _, order := range [][]string{
			{"1.2.0+b", "1.2.0+a", "1.2.0"},
			{"1.2.0+a", "1.2.0", "1.2.0+b"},
		} {
			var got []string
			for _, v := range resolver.Matching(c, versions(t, order...)) {
				got = append(got, v.String())
			}
			assert.Equal(t, []string{"1.2.0", "1.2.0+a", "1.2.0+b"}, got)
		}
	})
}

func TestResolveStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := slogcontext.NewCtx(context.Background(), logger)

	c := constraint.MustParse("^1.0.0")
	v, ok := resolver.ResolveStrings(ctx, c, []string{"1.0.0", "v1.3.0", "1.2", "1.2.0", "latest"})
	require.True(t, ok)
	assert.Equal(t, "1.2.0", v.String())

	out := buf.String()
	assert.Contains(t, out, `"realm":"resolver"`)
	assert.Contains(t, out, `"version":"v1.3.0"`)
	assert.Contains(t, out, `"version":"latest"`)
	assert.Contains(t, out, "skipping invalid version")
	assert.Contains(t, out, `"level":"DEBUG"`)

	t.Run("lenient", func(t *testing.T) {
		v, ok := resolver.ResolveStrings(ctx, c, []string{"1.0.0", "v1.3.0", "1.2"}, resolver.WithLenientVersions())
		require.True(t, ok)
		assert.Equal(t, "1.3.0", v.String())
	})

	t.Run("nothing valid", func(t *testing.T) {
		_, ok := resolver.ResolveStrings(context.Background(), c, []string{"latest", "main"})
		assert.False(t, ok)
	})
}

func TestResolveTag(t *testing.T) {
	ctx := context.Background()
	c := constraint.MustParse("^1.0.0")

	cases := []struct {
		name    string
		raw     []string
		opts    []resolver.Option
		tag     string
		version string
	}{
		{name: "strict", raw: []string{"1.0.0", "1.2.0", "v1.3.0"}, tag: "1.2.0", version: "1.2.0"},
		{name: "lenient keeps the tag", raw: []string{"1.0.0", "v1.3"}, opts: []resolver.Option{resolver.WithLenientVersions()}, tag: "v1.3", version: "1.3.0"},
		{name: "same version, smallest tag", raw: []string{"v1.3", "1.3.0", "v1.3.0"}, opts: []resolver.Option{resolver.WithLenientVersions()}, tag: "1.3.0", version: "1.3.0"},
		{name: "build tie-break", raw: []string{"1.3.0+b", "1.3.0+a"}, tag: "1.3.0+a", version: "1.3.0+a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, raw := range [][]string{tc.raw, reversed(tc.raw)} {
				tag, v, ok := resolver.ResolveTag(ctx, c, raw, tc.opts...)
				require.True(t, ok)
				assert.Equal(t, tc.tag, tag)
				assert.Equal(t, tc.version, v.String())
			}
		})
	}

	_, _, ok := resolver.ResolveTag(ctx, c, []string{"2.0.0", "latest"})
	assert.False(t, ok)
}

func reversed(s []string) []string {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

func TestResolveConcurrent(t *testing.T) {
	c := constraint.MustParse("~1.2.0")
	candidates := versions(t, "1.2.0", "1.2.5", "1.3.0")

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := resolver.Resolve(c, candidates)
			results[i] = v.String()
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, "1.2.5", r)
	}
}
