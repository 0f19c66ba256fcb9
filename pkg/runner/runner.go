package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

// Runner handles the chat loop of the Arbor engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store persists the state after every turn.
	// If nil, sessions are ephemeral.
	Store ports.SessionStore

	// Sanitizer bounds every message before it reaches the engine.
	Sanitizer Sanitizer

	// SessionID names the session created when Run starts from scratch.
	SessionID string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run executes the chat loop until the input ends, the user quits or ctx is canceled.
// If initialState is nil, engine.Start() is called to create a new session.
// Otherwise the current level is redrawn so the user sees where they are.
// The last state is returned so callers can persist or inspect it.
func (r *Runner) Run(ctx context.Context, engine ports.ChatEngine, initialState *domain.State) (*domain.State, error) {
	state, actions, err := r.resolveInitialState(ctx, engine, initialState)
	if err != nil {
		return nil, err
	}

	for {
		if err := r.Handler.Output(ctx, actions); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}
		if err := r.saveState(ctx, state); err != nil {
			return state, fmt.Errorf("critical persistence error: %w", err)
		}

		line, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return state, nil
			}
			if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				_ = r.Handler.SystemOutput(ctx, err.Error())
				actions = nil
				continue
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		cmd := ParseCommand(line)
		if cmd.Type == CommandQuit {
			return state, nil
		}
		if sel, ok := NumericSelection(engine.Tree(), state, cmd); ok {
			cmd = sel
		}

		resp, err := Dispatch(ctx, engine, state, cmd, WithDispatchSanitizer(r.Sanitizer))
		if err != nil {
			if errors.Is(err, domain.ErrIntakeIncomplete) || errors.Is(err, ErrOptionNotFound) {
				_ = r.Handler.SystemOutput(ctx, err.Error())
				actions = nil
				continue
			}
			return state, err
		}

		r.Logger.Debug("turn applied",
			"session_id", resp.State.SessionID,
			"command", cmd.Type,
			"stage", resp.State.Stage,
			"level_id", resp.State.CurrentLevel)

		state, actions = resp.State, resp.Actions
	}
}

func (r *Runner) resolveInitialState(ctx context.Context, engine ports.ChatEngine, initial *domain.State) (*domain.State, []domain.ActionRequest, error) {
	if initial != nil {
		actions, err := engine.Render(initial)
		if err != nil {
			return nil, nil, fmt.Errorf("render error: %w", err)
		}
		return initial, actions, nil
	}

	id := r.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	state, actions, err := engine.Start(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	return state, actions, nil
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil || state == nil {
		return nil
	}
	if err := r.Store.Save(ctx, state.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", state.SessionID, "level_id", state.CurrentLevel)
	return nil
}
