package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:         "validate [source]",
	Short:       "Check the tree for consistency",
	Long:        `Crawls the tree from its root and reports links to missing levels, dead-end options, shadowed options and unreachable levels.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"source-arg": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		engine, err := cli.BuildEngine(cmd.Context(), cfg, cli.ChatLogger(debugEnabled(cmd)), noHooks)
		if err != nil {
			return err
		}
		return cli.Validate(engine.Tree(), asJSON, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "print the report as JSON")
}
