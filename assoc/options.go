package assoc

import (
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/chrpos"
	"github.com/carbocation/sumstats/field"
	"go.uber.org/zap"
)

// Options configure FileReader and PhenoReader. They are fixed for the
// lifetime of a reader; the zero value uses the default registry, chromosome
// table and local-file opener, and applies no MAF filter.
type Options struct {
	Registry *field.Registry
	Chroms   *chrpos.Table
	Opener   *sumstats.Opener

	// MinimumMAF drops variants whose derived MAF is below it. Zero disables
	// the filter.
	MinimumMAF float64
	MAF        MAFResolver

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = field.Default
	}
	if o.Chroms == nil {
		o.Chroms = chrpos.Default
	}
	if o.Opener == nil {
		o.Opener = sumstats.DefaultOpener
	}
	if o.MAF == nil {
		o.MAF = FieldMAF{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return o
}
