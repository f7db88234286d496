// Package hits picks the significant, locally strongest variants of each
// phenotype and pools them across phenotypes for locus clustering.
package hits

import (
	"github.com/carbocation/sumstats/assoc"
	"github.com/carbocation/sumstats/field"
	"github.com/carbocation/sumstats/loci"
	"gopkg.in/guregu/null.v3"
)

// DefaultPValueCutoff and DefaultMaskRadius match the configuration defaults
// top_hits_pval_cutoff and within_pheno_mask_around_peak.
const (
	DefaultPValueCutoff = 1e-6
	DefaultMaskRadius   = 500000
)

// VariantReader is satisfied by *assoc.VariantStream and *assoc.FileReader.
type VariantReader interface {
	Read() assoc.Variant
	Err() error
}

// Selector accumulates the variants of one phenotype that pass Cutoff. It
// retains only the candidates, so it can be fed from a stream that is also
// being written elsewhere.
type Selector struct {
	Phenocode string
	Cutoff    float64
	Radius    int

	candidates []loci.Hit
}

func NewSelector(phenocode string, cutoff float64, radius int) *Selector {
	return &Selector{Phenocode: phenocode, Cutoff: cutoff, Radius: radius}
}

// Add considers one variant.
func (s *Selector) Add(v assoc.Variant) {
	pval, ok := v.PValue()
	if !ok || pval > s.Cutoff {
		return
	}

	s.candidates = append(s.candidates, FromVariant(s.Phenocode, v))
}

// Hits masks the candidates within the phenotype, keeping only the strongest
// variant in each neighborhood of Radius base pairs, sorted by p-value.
func (s *Selector) Hits() []loci.Hit {
	return loci.Cluster(s.candidates, s.Radius)
}

// Select drains r and returns its hits.
func Select(phenocode string, r VariantReader, cutoff float64, radius int) ([]loci.Hit, error) {
	s := NewSelector(phenocode, cutoff, radius)
	for v := r.Read(); v != nil; v = r.Read() {
		s.Add(v)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return s.Hits(), nil
}

// FromVariant converts a parsed variant into a hit.
func FromVariant(phenocode string, v assoc.Variant) loci.Hit {
	pval, _ := v.PValue()

	return loci.Hit{
		Phenocode:    phenocode,
		Chrom:        v.Chrom(),
		Pos:          v.Pos(),
		Ref:          v.Ref(),
		Alt:          v.Alt(),
		PValue:       pval,
		Beta:         nullFloat(v, "beta"),
		SEBeta:       nullFloat(v, "sebeta"),
		MAF:          nullFloat(v, "maf"),
		RSIDs:        nullString(v, "rsids"),
		NearestGenes: nullString(v, "nearest_genes"),
	}
}

func nullFloat(v assoc.Variant, name string) null.Float {
	f, ok := v[name].AsFloat()
	return null.NewFloat(f, ok)
}

func nullString(v assoc.Variant, name string) null.String {
	val, exists := v[name]
	if !exists || val.Null || val.Type != field.TypeString {
		return null.String{}
	}

	return null.StringFrom(val.Str)
}
