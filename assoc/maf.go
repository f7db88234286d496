package assoc

import (
	"fmt"
	"math"

	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/phenolist"
)

// MAFResolver derives a minor allele frequency for a variant. The boolean is
// false when the variant carries nothing to derive it from.
type MAFResolver interface {
	MAF(v Variant, pheno phenolist.Phenotype) (float64, bool, error)
}

// DefaultMAFTolerance is how far apart two representations of the same
// allele frequency may be before a variant is rejected.
const DefaultMAFTolerance = 0.05

// FieldMAF derives MAF from whichever of maf, af, and ac (with the
// phenotype's num_samples) are present. When more than one is present they
// must agree to within Tolerance; the first one wins.
type FieldMAF struct {
	Tolerance float64
}

func (f FieldMAF) MAF(v Variant, pheno phenolist.Phenotype) (float64, bool, error) {
	tolerance := f.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultMAFTolerance
	}

	type candidate struct {
		source string
		maf    float64
	}
	candidates := make([]candidate, 0, 3)

	if maf, ok := v["maf"].AsFloat(); ok {
		candidates = append(candidates, candidate{"maf", maf})
	}
	if af, ok := v["af"].AsFloat(); ok {
		candidates = append(candidates, candidate{"af", math.Min(af, 1-af)})
	}
	if ac, ok := v["ac"].AsFloat(); ok && pheno.NumSamples.Valid && pheno.NumSamples.Int64 > 0 {
		candidates = append(candidates, candidate{"ac", ac / 2 / float64(pheno.NumSamples.Int64)})
	}

	if len(candidates) == 0 {
		return 0, false, nil
	}

	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		if c.maf < lo.maf {
			lo = c
		}
		if c.maf > hi.maf {
			hi = c
		}
	}
	if hi.maf-lo.maf > tolerance {
		return 0, false, &sumstats.SchemaError{
			Field:      "maf",
			Raw:        fmt.Sprintf("%s=%v, %s=%v", lo.source, lo.maf, hi.source, hi.maf),
			Constraint: fmt.Sprintf("allele frequency representations disagree by more than %v", tolerance),
		}
	}

	return candidates[0].maf, true, nil
}
