package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

// cfg is resolved once per invocation by the root pre-run hook.
var cfg *config.Config

// noHooks is passed where the engine only serves introspection.
var noHooks domain.LifecycleHooks

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a decision-tree chat engine",
	Long: `Arbor walks a static tree of levels (answer, question, options) after a short
greeting / name / phone intake, and exposes the conversation over a terminal,
an HTTP + WebSocket API and an MCP server.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultFile, "YAML config file")
	flags.String("env-file", ".env", "dotenv file loaded before the config")
	flags.String("source", "", "content tree: JSON/YAML file, Loam directory or http(s) URL")
	flags.String("root", "", "override the root level of the tree")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("sessions-dir", file.DefaultSessionDir, "directory for terminal sessions when redis is not configured")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	path, _ := flags.GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("source") {
		loaded.Source, _ = flags.GetString("source")
	} else if len(args) > 0 && cmd.Annotations["source-arg"] == "true" {
		loaded.Source = args[0]
	}
	if flags.Changed("root") {
		loaded.Root, _ = flags.GetString("root")
	}
	if flags.Changed("log-level") {
		loaded.Log.Level, _ = flags.GetString("log-level")
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded
	return nil
}

func debugEnabled(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}

func sessionsDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("sessions-dir")
	return dir
}

// buildStack wires the engine and session store for commands that need both.
func buildStack(cmd *cobra.Command, opts cli.StackOptions) (*cli.Stack, error) {
	return cli.Build(cmd.Context(), cfg, opts)
}
