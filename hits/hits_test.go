package hits

import (
	"path/filepath"
	"testing"

	"github.com/carbocation/sumstats/assoc"
	"github.com/carbocation/sumstats/field"
	"github.com/carbocation/sumstats/loci"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/guregu/null.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type sliceReader struct {
	variants []assoc.Variant
}

func (r *sliceReader) Read() assoc.Variant {
	if len(r.variants) == 0 {
		return nil
	}
	v := r.variants[0]
	r.variants = r.variants[1:]
	return v
}

func (r *sliceReader) Err() error { return nil }

func variant(chrom string, pos int64, pval float64) assoc.Variant {
	return assoc.Variant{
		"chrom": field.String(chrom),
		"pos":   field.Int(pos),
		"ref":   field.String("A"),
		"alt":   field.String("G"),
		"pval":  field.Float(pval),
	}
}

func TestSelect(t *testing.T) {
	r := &sliceReader{variants: []assoc.Variant{
		variant("1", 100, 1e-8),
		variant("1", 200, 1e-10),
		variant("1", 900000, 1e-7),
		variant("2", 100, 0.01),
		variant("2", 200, 1e-6),
	}}

	got, err := Select("t2d", r, DefaultPValueCutoff, DefaultMaskRadius)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 200, got[0].Pos)
	assert.Equal(t, 900000, got[1].Pos)
	assert.Equal(t, "2", got[2].Chrom)
	assert.Equal(t, "t2d", got[2].Phenocode)
}

func TestSelectorSkipsNullPValues(t *testing.T) {
	v := variant("1", 100, 0)
	v["pval"] = field.Null(field.TypeFloat)

	s := NewSelector("t2d", 1, 0)
	s.Add(v)

	assert.Empty(t, s.Hits())
}

func TestFromVariant(t *testing.T) {
	v := variant("X", 100, 1e-9)
	v["beta"] = field.Float(0.5)
	v["sebeta"] = field.Null(field.TypeFloat)
	v["rsids"] = field.String("rs1")

	got := FromVariant("t2d", v)

	want := loci.Hit{
		Phenocode: "t2d",
		Chrom:     "X",
		Pos:       100,
		Ref:       "A",
		Alt:       "G",
		PValue:    1e-9,
		Beta:      null.FloatFrom(0.5),
		RSIDs:     null.StringFrom("rs1"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("hit mismatch (-want +got):\n%s", diff)
	}
}

func TestStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hits.db"))
	require.NoError(t, err)
	defer s.Close()

	first := []loci.Hit{
		{Chrom: "1", Pos: 100, Ref: "A", Alt: "G", PValue: 1e-8, Beta: null.FloatFrom(0.1)},
		{Chrom: "2", Pos: 200, Ref: "C", Alt: "T", PValue: 1e-9, NearestGenes: null.StringFrom("APOE")},
	}
	require.NoError(t, s.Put("t2d", first))
	require.NoError(t, s.Put("cad", []loci.Hit{{Chrom: "1", Pos: 150, Ref: "A", Alt: "G", PValue: 1e-7}}))

	// Replacing a phenotype drops its previous hits.
	require.NoError(t, s.Put("t2d", first[1:]))

	got, err := s.All()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cad", got[0].Phenocode)
	assert.Equal(t, "t2d", got[1].Phenocode)
	assert.Equal(t, "APOE", got[1].NearestGenes.String)
	assert.False(t, got[1].Beta.Valid)

	phenocodes, err := s.Phenocodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"cad", "t2d"}, phenocodes)

	clustered := loci.Cluster(got, 500000)
	require.Len(t, clustered, 2)
	assert.Equal(t, "t2d", clustered[0].Phenocode)
}
