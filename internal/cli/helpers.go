package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// NewLogger creates the stderr logger for long-running commands.
func NewLogger(cfg *config.Config, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(cfg.LogLevel())
}

// ChatLogger stays silent unless debugging, so logs do not interleave with the conversation.
func ChatLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// whereabouts describes the position of a session for status lines.
func whereabouts(state *domain.State) string {
	if state.InTree() {
		return fmt.Sprintf("level '%s'", state.CurrentLevel)
	}
	return fmt.Sprintf("intake (%s)", state.Stage)
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}
