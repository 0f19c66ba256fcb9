package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long:  `List, inspect and remove sessions kept in --sessions-dir, or in Redis when redis.addr is configured.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.SessionStore) error {
			return cli.ListSessions(cmd.Context(), store, cmd.OutOrStdout())
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.SessionStore) error {
			return cli.InspectSession(cmd.Context(), store, args[0], cmd.OutOrStdout())
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id...]",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return withStore(cmd, func(store ports.SessionStore) error {
			return cli.RemoveSessions(cmd.Context(), store, args, all, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "remove every stored session")
}

// withStore opens the configured session store without loading the tree.
func withStore(cmd *cobra.Command, fn func(ports.SessionStore) error) error {
	store, _, closer, err := cli.BuildStore(cmd.Context(), cfg, sessionsDir(cmd))
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	return fn(store)
}
