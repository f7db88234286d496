package field

import (
	"errors"
	"testing"

	"github.com/carbocation/sumstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNullToken(t *testing.T) {
	v, err := Default.Parse("pval", "NA")
	require.NoError(t, err)
	assert.True(t, v.Null)
	assert.Equal(t, "", v.String())

	v, err = Default.Parse("beta", ".")
	require.NoError(t, err)
	assert.True(t, v.Null)
}

func TestParseNullTokenInNonNullableField(t *testing.T) {
	_, err := Default.Parse("maf", "NA")
	require.Error(t, err)

	var schemaErr *sumstats.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "maf", schemaErr.Field)
	assert.Equal(t, "NA", schemaErr.Raw)
}

func TestParseRange(t *testing.T) {
	_, err := Default.Parse("pval", "1.5")
	var schemaErr *sumstats.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Constraint, "maximum 1")

	_, err = Default.Parse("pos", "-1")
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Constraint, "minimum 0")

	// Bounds are inclusive.
	v, err := Default.Parse("maf", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v.Float)

	_, err = Default.Parse("pval", "nan")
	assert.Error(t, err)
}

func TestParseRoundsAfterRangeCheck(t *testing.T) {
	v, err := Default.Parse("pval", "0.0033333")
	require.NoError(t, err)
	assert.Equal(t, 0.00333, v.Float)

	v, err = Default.Parse("beta", "1234.5")
	require.NoError(t, err)
	assert.Equal(t, 1230.0, v.Float)

	// 0.99999 rounds to 1, which is within range for pval anyway.
	v, err = Default.Parse("pval", "0.99999")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Float)
}

func TestParseTypes(t *testing.T) {
	v, err := Default.Parse("pos", "12345")
	require.NoError(t, err)
	assert.Equal(t, Int(12345), v)

	_, err = Default.Parse("pos", "12.5")
	assert.Error(t, err)

	v, err = Default.Parse("chrom", "NA")
	require.NoError(t, err)
	assert.Equal(t, String("NA"), v)
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	for colname, want := range map[string]string{
		"#CHROM":  "chrom",
		"Chrom":   "chrom",
		"BEGIN":   "pos",
		"PVALUE":  "pval",
		"pval":    "pval",
		"ns.ctrl": "num_controls",
	} {
		got, ok := Default.Resolve(colname)
		assert.True(t, ok, colname)
		assert.Equal(t, want, got, colname)
	}

	_, ok := Default.Resolve("marker_id")
	assert.False(t, ok)
}

func TestNewRegistryRejectsDuplicateAlias(t *testing.T) {
	_, err := NewRegistry(DefaultFields(), map[string]string{"PVALUE": "beta"}, DefaultNullValues)
	var schemaErr *sumstats.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Error(), "claimed by both")

	_, err = NewRegistry(DefaultFields(), map[string]string{"foo": "nonexistent"}, DefaultNullValues)
	assert.Error(t, err)

	fields := append(DefaultFields(), Descriptor{Name: "pval"})
	_, err = NewRegistry(fields, nil, DefaultNullValues)
	assert.Error(t, err)
}

func TestNewRegistryExtraAliases(t *testing.T) {
	r, err := NewRegistry(DefaultFields(), map[string]string{"P_BOLT_LMM": "pval", "pvalue": "pval"}, DefaultNullValues)
	require.NoError(t, err)

	name, ok := r.Resolve("p_bolt_lmm")
	require.True(t, ok)
	assert.Equal(t, "pval", name)

	d, ok := r.Field("pval")
	require.True(t, ok)
	assert.Contains(t, d.Aliases, "p_bolt_lmm")
	assert.Contains(t, d.Aliases, "pval")
}

func TestRawInputFields(t *testing.T) {
	main := Default.RawInputFields(PerVariant, PerAssoc)
	assert.Contains(t, main, "chrom")
	assert.Contains(t, main, "pval")
	assert.NotContains(t, main, "rsids")
	assert.NotContains(t, main, "num_samples")

	assert.Equal(t, []string{"num_cases", "num_controls", "num_samples"}, Default.RawInputFields(PerPheno))
}
