package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP + WebSocket chat server",
	Long: `Serves the chat API (/sessions, /ws), the OpenAPI document (/openapi.yaml),
the tree (/tree) and Prometheus metrics (/metrics). Sessions are kept in memory
unless redis.addr is configured, in which case replicas share them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		watch, _ := cmd.Flags().GetBool("watch")

		logger := cli.NewLogger(cfg, debugEnabled(cmd))
		stack, err := buildStack(cmd, cli.StackOptions{Metrics: true, Logger: logger})
		if err != nil {
			return err
		}
		defer stack.Close()

		if watch {
			go func() {
				if err := cli.Watch(cmd.Context(), cfg.Source, stack.Engine, logger); err != nil {
					logger.Warn("hot reload disabled", "err", err)
				}
			}()
		}
		return cli.Serve(cmd.Context(), stack, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address (overrides http.addr)")
	serveCmd.Flags().BoolP("watch", "w", false, "reload the tree when the source changes")
}
