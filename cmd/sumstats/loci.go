package main

import (
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/hits"
	"github.com/carbocation/sumstats/loci"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	lociJSONPath string
	lociTSVPath  string
	bqProject    string
	bqDataset    string
	bqTable      string
	bqCreate     bool
)

var lociCmd = &cobra.Command{
	Use:   "loci",
	Short: "Cluster the stored hits of every phenotype into loci",
	Long: `loci reads every hit stored by parse --hits-db and keeps, per chromosome, the
strongest hit in each neighborhood of between_pheno_mask_around_peak base pairs.
The loci are sorted by p-value and written as JSON and/or TSV ("-" for
stdout), and optionally streamed into a BigQuery table.`,
	Args: cobra.NoArgs,
	RunE: runLoci,
}

func init() {
	lociCmd.Flags().StringVar(&hitsDBPath, "hits-db", "", "SQLite database written by parse --hits-db")
	lociCmd.Flags().StringVar(&lociJSONPath, "json", "", "Write loci as a JSON array to this path")
	lociCmd.Flags().StringVar(&lociTSVPath, "tsv", "", "Write loci as a TSV to this path")
	lociCmd.Flags().StringVar(&bqProject, "bq-project", "", "BigQuery project to insert loci into")
	lociCmd.Flags().StringVar(&bqDataset, "bq-dataset", "", "BigQuery dataset to insert loci into")
	lociCmd.Flags().StringVar(&bqTable, "bq-table", "", "BigQuery table to insert loci into")
	lociCmd.Flags().BoolVar(&bqCreate, "bq-create", false, "Create the BigQuery table before inserting")
	lociCmd.MarkFlagRequired("hits-db")
}

func runLoci(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	store, err := hits.Open(sumstats.ExpandHome(hitsDBPath))
	if err != nil {
		return err
	}
	defer store.Close()

	pool, err := store.All()
	if err != nil {
		return err
	}

	clustered := loci.Cluster(pool, cfg.BetweenPhenoMaskAroundPeak)
	logger.Info("clustered hits",
		zap.Int("hits", len(pool)),
		zap.Int("loci", len(clustered)),
		zap.Int("radius", cfg.BetweenPhenoMaskAroundPeak),
	)

	if lociJSONPath != "" {
		if err := writeOutput(cmd, lociJSONPath, func(w io.Writer) error { return loci.WriteJSON(w, clustered) }); err != nil {
			return err
		}
	}

	if lociTSVPath != "" {
		if err := writeOutput(cmd, lociTSVPath, func(w io.Writer) error { return loci.WriteTSV(w, clustered) }); err != nil {
			return err
		}
	}

	if bqProject == "" && bqDataset == "" && bqTable == "" {
		return nil
	}
	if bqProject == "" || bqDataset == "" || bqTable == "" {
		return fmt.Errorf("--bq-project, --bq-dataset and --bq-table must be given together")
	}

	BQ := &loci.WrappedBigQuery{
		Context: ctx,
		Project: bqProject,
		Dataset: bqDataset,
		Table:   bqTable,
	}
	BQ.Client, err = bigquery.NewClient(BQ.Context, BQ.Project)
	if err != nil {
		return err
	}
	defer BQ.Client.Close()

	if bqCreate {
		if err := BQ.CreateTable(); err != nil {
			return err
		}
	}

	if err := BQ.InsertLoci(clustered); err != nil {
		return err
	}
	logger.Info("inserted loci into BigQuery", zap.String("table", fmt.Sprintf("%s.%s.%s", bqProject, bqDataset, bqTable)))

	return nil
}

func writeOutput(cmd *cobra.Command, path string, write func(w io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}

	return writeAtomically(sumstats.ExpandHome(path), func(f *os.File) error { return write(f) })
}
