package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the chat as MCP tools (start_session, send_message, select_option,
go_back, main_menu, get_session) and the tree as the arbor://tree resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// stdout carries JSON-RPC, logs go to stderr
		logger := cli.NewLogger(cfg, debugEnabled(cmd))
		stack, err := buildStack(cmd, cli.StackOptions{Logger: logger})
		if err != nil {
			return err
		}
		defer stack.Close()

		return cli.ServeMCP(cmd.Context(), stack, transport, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
