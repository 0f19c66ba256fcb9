package runner

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the render requests to the user, in order.
	Output(ctx context.Context, actions []domain.ActionRequest) error

	// Input reads one line from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. errors, status updates).
	// This is distinct from chat content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms bot text before it is written (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)
