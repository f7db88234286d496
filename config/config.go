// Package config holds the settings of one pipeline run. A Config is loaded
// once and passed explicitly to the readers and the clustering step.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/assoc"
	"github.com/carbocation/sumstats/chrpos"
	"github.com/carbocation/sumstats/field"
	"github.com/carbocation/sumstats/hits"
	"go.uber.org/zap"
)

type Config struct {
	NullValues   []string          `toml:"null_values"`
	FieldAliases map[string]string `toml:"field_aliases"`
	ChromAliases map[string]string `toml:"chrom_aliases"`

	MinimumMAF float64 `toml:"minimum_maf"`

	TopHitsPValueCutoff        float64 `toml:"top_hits_pval_cutoff"`
	WithinPhenoMaskAroundPeak  int     `toml:"within_pheno_mask_around_peak"`
	BetweenPhenoMaskAroundPeak int     `toml:"between_pheno_mask_around_peak"`

	NumWorkers int `toml:"num_workers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		NullValues:                 append([]string(nil), field.DefaultNullValues...),
		FieldAliases:               map[string]string{},
		ChromAliases:               map[string]string{},
		TopHitsPValueCutoff:        hits.DefaultPValueCutoff,
		WithinPhenoMaskAroundPeak:  hits.DefaultMaskRadius,
		BetweenPhenoMaskAroundPeak: hits.DefaultMaskRadius,
		NumWorkers:                 runtime.NumCPU(),
	}
}

// Load reads a TOML file over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	md, err := toml.DecodeFile(sumstats.ExpandHome(path), c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.MinimumMAF < 0 || c.MinimumMAF > 0.5 {
		return fmt.Errorf("minimum_maf must be in [0, 0.5], got %v", c.MinimumMAF)
	}
	if c.TopHitsPValueCutoff <= 0 || c.TopHitsPValueCutoff > 1 {
		return fmt.Errorf("top_hits_pval_cutoff must be in (0, 1], got %v", c.TopHitsPValueCutoff)
	}
	if c.WithinPhenoMaskAroundPeak < 0 {
		return fmt.Errorf("within_pheno_mask_around_peak must not be negative, got %d", c.WithinPhenoMaskAroundPeak)
	}
	if c.BetweenPhenoMaskAroundPeak < 0 {
		return fmt.Errorf("between_pheno_mask_around_peak must not be negative, got %d", c.BetweenPhenoMaskAroundPeak)
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be at least 1, got %d", c.NumWorkers)
	}

	return nil
}

// ReaderOptions builds the field registry and chromosome table the config
// describes.
func (c *Config) ReaderOptions(opener *sumstats.Opener, logger *zap.Logger) (assoc.Options, error) {
	registry, err := field.NewRegistry(field.DefaultFields(), c.FieldAliases, c.NullValues)
	if err != nil {
		return assoc.Options{}, err
	}

	chroms, err := chrpos.NewTable(c.ChromAliases)
	if err != nil {
		return assoc.Options{}, err
	}

	return assoc.Options{
		Registry:   registry,
		Chroms:     chroms,
		Opener:     opener,
		MinimumMAF: c.MinimumMAF,
		Logger:     logger,
	}, nil
}
