package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/assoc"
	"github.com/carbocation/sumstats/hits"
	"github.com/carbocation/sumstats/phenolist"
	"github.com/carbocation/sumstats/qq"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	phenolistPath string
	outDir        string
	hitsDBPath    string
	force         bool
	onlyPhenos    []string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Merge and validate every phenotype's association files",
	Long: `For each phenotype in the pheno list, parse presents its association files as
one stream ordered by chromosome, position, ref and alt, and writes:

  <out>/<phenocode>.tsv.gz   the canonical variant stream
  <out>/<phenocode>.json     the reconciled per-phenotype info, variant count and GC lambda

Phenotypes whose outputs are newer than their inputs are skipped unless --force
is given. With --hits-db, each phenotype's significant hits are stored for the
loci command.`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&phenolistPath, "phenolist", "", "Pheno list (JSON array, or delimited with a header)")
	parseCmd.Flags().StringVar(&outDir, "out", "", "Output directory")
	parseCmd.Flags().StringVar(&hitsDBPath, "hits-db", "", "SQLite database that collects each phenotype's hits")
	parseCmd.Flags().BoolVar(&force, "force", false, "Reparse phenotypes even if their outputs are up to date")
	parseCmd.Flags().StringSliceVar(&onlyPhenos, "phenocode", nil, "Only parse these phenocodes")
	parseCmd.MarkFlagRequired("phenolist")
	parseCmd.MarkFlagRequired("out")
}

// summary is written next to each canonical stream.
type summary struct {
	phenolist.Phenotype
	NumVariants int        `json:"num_variants"`
	NumHits     int        `json:"num_hits"`
	GCLambda    float64    `json:"gc_lambda"`
	Columns     []string   `json:"columns"`
	Info        assoc.Info `json:"info"`
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// loadPhenolist reads the pheno list and returns an opener able to read every
// association file it names.
func loadPhenolist(ctx context.Context, path string) ([]phenolist.Phenotype, *sumstats.Opener, error) {
	opener, err := newOpener(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	phenos, err := phenolist.Load(opener, path)
	if err != nil {
		closeOpener(opener)
		return nil, nil, err
	}

	if opener.Client == nil {
		var paths []string
		for _, p := range phenos {
			paths = append(paths, p.AssocFiles...)
		}
		assocOpener, err := newOpener(ctx, paths...)
		if err != nil {
			return nil, nil, err
		}
		opener.Client = assocOpener.Client
	}

	if len(onlyPhenos) > 0 {
		keep := make(map[string]struct{}, len(onlyPhenos))
		for _, code := range onlyPhenos {
			keep[code] = struct{}{}
		}
		filtered := phenos[:0]
		for _, p := range phenos {
			if _, ok := keep[p.Phenocode]; ok {
				filtered = append(filtered, p)
			}
		}
		phenos = filtered
	}

	return phenos, opener, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	phenos, opener, err := loadPhenolist(ctx, phenolistPath)
	if err != nil {
		return err
	}
	defer closeOpener(opener)

	dir := sumstats.ExpandHome(outDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	opts, err := cfg.ReaderOptions(opener, logger)
	if err != nil {
		return err
	}

	var store *hits.Store
	if hitsDBPath != "" {
		store, err = hits.Open(sumstats.ExpandHome(hitsDBPath))
		if err != nil {
			return err
		}
		defer store.Close()
	}

	logger.Info("parsing phenotypes",
		zap.Int("phenotypes", len(phenos)),
		zap.Int("workers", cfg.NumWorkers),
		zap.String("out", dir),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)
	for _, pheno := range phenos {
		pheno := pheno
		g.Go(func() error {
			if err := parsePheno(gctx, pheno, opts, dir, store); err != nil {
				return fmt.Errorf("phenotype %q: %w", pheno.Phenocode, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func parsePheno(ctx context.Context, pheno phenolist.Phenotype, opts assoc.Options, dir string, store *hits.Store) error {
	started := time.Now()
	log := logger.With(zap.String("phenocode", pheno.Phenocode))

	tsvPath := filepath.Join(dir, pheno.Phenocode+".tsv.gz")
	jsonPath := filepath.Join(dir, pheno.Phenocode+".json")

	if !force {
		run, err := opts.Opener.ShouldRun(pheno.AssocFiles, []string{tsvPath, jsonPath})
		if err != nil {
			return err
		}
		if !run {
			log.Info("outputs are up to date, skipping")
			return nil
		}
	}

	pr, err := assoc.NewPhenoReader(pheno, opts)
	if err != nil {
		return err
	}

	info, err := pr.Info()
	if err != nil {
		return err
	}

	columns := orderedColumns(opts, pr.Fields())
	selector := hits.NewSelector(pheno.Phenocode, cfg.TopHitsPValueCutoff, cfg.WithinPhenoMaskAroundPeak)
	var acc qq.Accumulator

	err = writeAtomically(tsvPath, func(f *os.File) error {
		gz := gzip.NewWriter(f)
		w := bufio.NewWriterSize(gz, assoc.BufferSize)

		if err := writeRow(w, columns); err != nil {
			return err
		}

		stream := pr.Variants()
		defer stream.Close()

		row := make([]string, len(columns))
		for v := stream.Read(); v != nil; v = stream.Read() {
			for i, name := range columns {
				row[i] = v[name].String()
			}
			if err := writeRow(w, row); err != nil {
				return err
			}

			selector.Add(v)
			if pval, ok := v.PValue(); ok {
				acc.Add(pval)
			}

			if acc.Len()%(1<<16) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
		if err := stream.Err(); err != nil {
			return err
		}

		if err := w.Flush(); err != nil {
			return pfx.Err(err)
		}

		return gz.Close()
	})
	if err != nil {
		return err
	}

	lambda, err := acc.GCLambda()
	if err != nil {
		return err
	}

	selected := selector.Hits()
	if store != nil {
		if err := store.Put(pheno.Phenocode, selected); err != nil {
			return err
		}
	}

	s := summary{
		Phenotype:   pheno,
		NumVariants: acc.Len(),
		NumHits:     len(selected),
		GCLambda:    lambda,
		Columns:     columns,
		Info:        info,
	}
	err = writeAtomically(jsonPath, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	})
	if err != nil {
		return err
	}

	log.Info("parsed phenotype",
		zap.Strings("assoc_files", pr.Paths()),
		zap.Int("variants", acc.Len()),
		zap.Float64("gc_lambda", lambda),
		zap.Int("hits", len(selected)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return nil
}

// writeRow writes one tab-delimited line.
func writeRow(w io.Writer, values []string) error {
	if _, err := fmt.Fprintln(w, strings.Join(values, "\t")); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// orderedColumns lists fields in field-table order.
func orderedColumns(opts assoc.Options, fields []string) []string {
	present := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		present[name] = struct{}{}
	}

	out := make([]string, 0, len(fields))
	for _, name := range opts.Registry.Names() {
		if _, ok := present[name]; ok {
			out = append(out, name)
		}
	}

	return out
}

// writeAtomically writes path through a temporary file in the same
// directory. Nothing is left behind if write fails.
func writeAtomically(path string, write func(f *os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
