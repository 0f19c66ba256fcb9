package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of arbor",
	// skip config loading so version works anywhere
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "arbor version %s\n", strings.TrimSpace(arbor.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
