// sumstats turns per-phenotype GWAS association files into one canonical,
// ordered, validated variant file per phenotype, and reduces the significant
// hits of many phenotypes to a list of loci.
package main

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/sumstats"
	"github.com/carbocation/sumstats/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sumstats",
	Short: "Parse GWAS summary statistics and cluster their hits into loci",
	Long: `sumstats reads the association files listed in a pheno list. Each
phenotype's files are merged into one stream ordered by chromosome and
position, every value is checked against the field table, and the result is
written as a gzipped TSV. Significant hits are kept in a SQLite database so
that the loci command can cluster them across phenotypes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc = zap.NewDevelopmentConfig()
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML configuration file (defaults apply when omitted)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(lociCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newOpener returns an Opener that can read every path given. A Google
// Storage client is only created when one of them is a gs:// path.
func newOpener(ctx context.Context, paths ...string) (*sumstats.Opener, error) {
	o := &sumstats.Opener{Context: ctx}

	for _, path := range paths {
		if !sumstats.IsGoogleStoragePath(path) {
			continue
		}

		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating a Google Storage client for %s: %w", path, err)
		}
		o.Client = client
		break
	}

	return o, nil
}

func closeOpener(o *sumstats.Opener) {
	if o != nil && o.Client != nil {
		o.Client.Close()
	}
}
