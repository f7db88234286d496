package main

import (
	"fmt"

	"github.com/carbocation/sumstats/compileinfo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the commit this binary was built from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := compileinfo.Get()
		logger.Debug("build info", info.Fields()...)
		_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
		return err
	},
}
