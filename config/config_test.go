package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{".", "NA"}, c.NullValues)
	assert.Equal(t, 1e-6, c.TopHitsPValueCutoff)
	assert.Equal(t, 500000, c.WithinPhenoMaskAroundPeak)
	assert.Equal(t, 500000, c.BetweenPhenoMaskAroundPeak)
	assert.GreaterOrEqual(t, c.NumWorkers, 1)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
null_values = ["NA", "-9"]
minimum_maf = 0.01
between_pheno_mask_around_peak = 250000
num_workers = 2

[field_aliases]
"LOG10P" = "pval"

[chrom_aliases]
"chr23" = "X"
"26" = "MT"
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"NA", "-9"}, c.NullValues)
	assert.Equal(t, 0.01, c.MinimumMAF)
	assert.Equal(t, 250000, c.BetweenPhenoMaskAroundPeak)
	assert.Equal(t, 500000, c.WithinPhenoMaskAroundPeak)
	assert.Equal(t, 2, c.NumWorkers)

	opts, err := c.ReaderOptions(nil, nil)
	require.NoError(t, err)

	name, ok := opts.Registry.Resolve("log10p")
	require.True(t, ok)
	assert.Equal(t, "pval", name)
	assert.True(t, opts.Registry.IsNull("-9"))
	assert.False(t, opts.Registry.IsNull("."))
	assert.Equal(t, "MT", opts.Chroms.Normalize("26"))
}

func TestLoadRejects(t *testing.T) {
	for name, body := range map[string]string{
		"unknown key":          `top_hits_cutoff = 1e-8`,
		"bad cutoff":           `top_hits_pval_cutoff = 2.0`,
		"negative radius":      `within_pheno_mask_around_peak = -1`,
		"no workers":           `num_workers = 0`,
		"not toml":             `this is not toml`,
		"minimum_maf too high": `minimum_maf = 0.6`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestReaderOptionsRejectsBadAliases(t *testing.T) {
	c := Default()
	c.FieldAliases = map[string]string{"p": "beta"}
	_, err := c.ReaderOptions(nil, nil)
	assert.Error(t, err, "p already belongs to pval")

	c = Default()
	c.ChromAliases = map[string]string{"chrUn": "Un"}
	_, err = c.ReaderOptions(nil, nil)
	assert.Error(t, err)
}
