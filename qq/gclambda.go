// Package qq summarizes the p-value distribution of a phenotype.
package qq

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

var chiSquared1 = distuv.ChiSquared{K: 1}

// GCLambda returns the genomic inflation factor of pvals: the median of their
// 1-df chi-square statistics divided by the median of the 1-df chi-square
// distribution. A well-calibrated null gives 1.
func GCLambda(pvals []float64) (float64, error) {
	if len(pvals) == 0 {
		return 0, fmt.Errorf("cannot compute lambda without p-values")
	}

	chisq := make(stats.Float64Data, 0, len(pvals))
	for _, p := range pvals {
		if p < 0 || p > 1 {
			return 0, fmt.Errorf("p-value %v is outside [0, 1]", p)
		}
		chisq = append(chisq, chiSquared1.Quantile(1-p))
	}

	median, err := chisq.Median()
	if err != nil {
		return 0, err
	}

	return median / chiSquared1.Quantile(0.5), nil
}

// Accumulator collects p-values from a stream for GCLambda.
type Accumulator struct {
	pvals []float64
}

func (a *Accumulator) Add(pval float64) {
	a.pvals = append(a.pvals, pval)
}

func (a *Accumulator) Len() int { return len(a.pvals) }

func (a *Accumulator) GCLambda() (float64, error) {
	return GCLambda(a.pvals)
}
