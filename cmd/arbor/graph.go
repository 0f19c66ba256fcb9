package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:         "graph [source]",
	Short:       "Export the tree as a Mermaid diagram",
	Long:        `Outputs a Mermaid diagram (graph TD) of the levels and their options. With --session, the path of that session is highlighted.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"source-arg": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		stack, err := buildStack(cmd, cli.StackOptions{
			SessionDir: sessionsDir(cmd),
			Logger:     cli.ChatLogger(debugEnabled(cmd)),
		})
		if err != nil {
			return err
		}
		defer stack.Close()

		return cli.Graph(cmd.Context(), stack.Engine.Tree(), stack.Store, sessionID, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "highlight the path of this session")
}
