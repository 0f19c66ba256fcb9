package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:         "chat [source]",
	Short:       "Chat with the tree in the terminal",
	Long:        `Starts an interactive conversation. Type /back, /menu or /quit at any time; numbers pick options once the intake is done.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"source-arg": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watch, _ := cmd.Flags().GetBool("watch")

		logger := cli.ChatLogger(debugEnabled(cmd))
		stack, err := buildStack(cmd, cli.StackOptions{SessionDir: sessionsDir(cmd), Logger: logger})
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

		_, err = cli.RunChat(cmd.Context(), stack, cli.ChatOptions{
			SessionID: sessionID,
			Fresh:     fresh,
			JSON:      jsonMode,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "persist the conversation under this session ID and resume it")
	chatCmd.Flags().Bool("fresh", false, "discard the stored session before starting")
	chatCmd.Flags().Bool("json", false, "NDJSON input and output")
	chatCmd.Flags().BoolP("watch", "w", false, "reload the tree when the source changes")

	// chat is the default command
	rootCmd.Args = chatCmd.Args
	rootCmd.Annotations = chatCmd.Annotations
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
