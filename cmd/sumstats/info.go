package main

import (
	"encoding/json"

	"github.com/carbocation/sumstats/assoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print each phenotype's reconciled sample counts as JSON",
	Long: `info reads the per-phenotype columns (num_cases, num_controls, num_samples)
from every association file of every phenotype in the pheno list, checks that
all lines and all files agree, and prints one JSON object keyed by phenocode.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&phenolistPath, "phenolist", "", "Pheno list (JSON array, or delimited with a header)")
	infoCmd.MarkFlagRequired("phenolist")
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	phenos, opener, err := loadPhenolist(ctx, phenolistPath)
	if err != nil {
		return err
	}
	defer closeOpener(opener)

	opts, err := cfg.ReaderOptions(opener, logger)
	if err != nil {
		return err
	}

	out := make(map[string]assoc.Info, len(phenos))
	for _, pheno := range phenos {
		pr, err := assoc.NewPhenoReader(pheno, opts)
		if err != nil {
			return err
		}

		info, err := pr.Info()
		if err != nil {
			return err
		}
		out[pheno.Phenocode] = info

		logger.Debug("read pheno info", zap.String("phenocode", pheno.Phenocode), zap.Stringer("info", info))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
