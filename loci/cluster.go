// Package loci collapses significant hits from many phenotypes into one
// representative per genomic neighborhood.
package loci

import (
	"sort"

	"gopkg.in/guregu/null.v3"
)

// Hit is a variant-phenotype association that passed a significance cutoff.
type Hit struct {
	Phenocode    string      `json:"phenocode" db:"phenocode"`
	Chrom        string      `json:"chrom" db:"chrom"`
	Pos          int         `json:"pos" db:"pos"`
	Ref          string      `json:"ref" db:"ref"`
	Alt          string      `json:"alt" db:"alt"`
	PValue       float64     `json:"pval" db:"pval"`
	Beta         null.Float  `json:"beta" db:"beta"`
	SEBeta       null.Float  `json:"sebeta" db:"sebeta"`
	MAF          null.Float  `json:"maf" db:"maf"`
	RSIDs        null.String `json:"rsids" db:"rsids"`
	NearestGenes null.String `json:"nearest_genes" db:"nearest_genes"`
}

// Locus is the hit chosen to represent its neighborhood.
type Locus = Hit

// Cluster greedily reduces hits to loci. Within each chromosome, the hit with
// the smallest p-value is emitted and every remaining hit within radius base
// pairs of it (inclusive) is discarded, until no hits remain. Ties on p-value
// go to the hit that came first in the input. The result is sorted by
// ascending p-value, with ties kept in emission order.
//
// Removal is relative to each emitted hit, not a merge of intervals, so two
// loci on one chromosome may lie closer than radius when the hit that would
// have joined them was removed by a stronger neighbor.
func Cluster(hits []Hit, radius int) []Locus {
	var chroms []string
	byChrom := make(map[string][]Hit)
	for _, h := range hits {
		if _, seen := byChrom[h.Chrom]; !seen {
			chroms = append(chroms, h.Chrom)
		}
		byChrom[h.Chrom] = append(byChrom[h.Chrom], h)
	}

	out := make([]Locus, 0)
	for _, chrom := range chroms {
		pool := byChrom[chrom]
		for len(pool) > 0 {
			best := 0
			for i := range pool {
				if pool[i].PValue < pool[best].PValue {
					best = i
				}
			}
			peak := pool[best]
			out = append(out, peak)

			kept := pool[:0]
			for i, h := range pool {
				if i != best && abs(h.Pos-peak.Pos) > radius {
					kept = append(kept, h)
				}
			}
			pool = kept
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].PValue < out[j].PValue })

	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
