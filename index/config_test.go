package index_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm.software/open-component-model/bindings/go/artifactory/index"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name               string
		input              string
		concurrencyLimit   int
		includePrereleases bool
		lenient            bool
		err                assert.ErrorAssertionFunc
	}{
		{
			name:               "defaults",
			input:              ``,
			concurrencyLimit:   index.DefaultConcurrencyLimit,
			includePrereleases: true,
			err:                assert.NoError,
		},
		{
			name: "yaml",
			input: `
concurrencyLimit: 2
includePrereleases: false
lenientVersions: true
`,
			concurrencyLimit: 2,
			lenient:          true,
			err:              assert.NoError,
		},
		{
			name:               "json",
			input:              `{"concurrencyLimit": -1}`,
			concurrencyLimit:   -1,
			includePrereleases: true,
			err:                assert.NoError,
		},
		{
			name:  "zero limit",
			input: `concurrencyLimit: 0`,
			err:   assert.Error,
		},
		{
			name:  "unknown field",
			input: `parallelism: 4`,
			err:   assert.Error,
		},
		{
			name:  "wrong type",
			input: `concurrencyLimit: many`,
			err:   assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := index.LoadConfig([]byte(tt.input))
			if !tt.err(t, err) || err != nil {
				return
			}
			assert.Equal(t, tt.concurrencyLimit, cfg.ConcurrencyLimit)
			require.NotNil(t, cfg.IncludePrereleases)
			assert.Equal(t, tt.includePrereleases, *cfg.IncludePrereleases)
			assert.Equal(t, tt.lenient, cfg.LenientVersions)
		})
	}
}

func TestConfigOptions(t *testing.T) {
	m := newIndex(t)
	ctx := context.Background()

	cfg, err := index.LoadConfig([]byte("includePrereleases: false\nlenientVersions: true\n"))
	require.NoError(t, err)

	c, err := index.Resolve(ctx, m, index.MustParseQuery("acme/widget"), cfg.Options()...)
	require.NoError(t, err)
	assert.Equal(t, "acme/widget@2.0.0", c.String())

	c, err = index.Resolve(ctx, m, index.MustParseQuery("legacy/tool"), cfg.Options()...)
	require.NoError(t, err)
	assert.Equal(t, "legacy/tool@1.2.0", c.String())

	c, err = index.Resolve(ctx, m, index.MustParseQuery("acme/widget"), index.DefaultConfig().Options()...)
	require.NoError(t, err)
	assert.Equal(t, "acme/widget@2.1.0-rc.1", c.String())
}
