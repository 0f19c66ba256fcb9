package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
)

// ChatOptions configures a terminal conversation.
type ChatOptions struct {
	// SessionID persists the conversation under this ID and resumes it when present.
	// Empty means an ephemeral session.
	SessionID string
	// Fresh discards any stored state for SessionID before starting.
	Fresh bool
	// JSON switches to NDJSON input and output.
	JSON bool

	In  io.Reader
	Out io.Writer
}

// RunChat runs a conversation over the terminal until the input ends or the user quits.
func RunChat(ctx context.Context, stack *Stack, opts ChatOptions) (*domain.State, error) {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	initial, err := hydrate(ctx, stack, opts)
	if err != nil {
		return nil, err
	}

	var handler runner.IOHandler
	if opts.JSON {
		jh := runner.NewJSONHandler(in, out)
		jh.Sanitizer = stack.Sanitizer
		handler = jh
	} else {
		thOpts := []runner.TextHandlerOption{runner.WithTextHandlerSanitizer(stack.Sanitizer)}
		if runner.IsInteractive(in) {
			tui.PrintBanner(out)
			thOpts = append(thOpts,
				runner.WithTextHandlerRenderer(tui.NewRenderer()),
				runner.WithTextHandlerStyle(tui.DefaultStyle()),
			)
		}
		handler = runner.NewTextHandler(in, out, thOpts...)

		switch {
		case initial != nil:
			printSystemMessage(out, "Resuming session '%s' at %s.", opts.SessionID, whereabouts(initial))
		case opts.SessionID != "":
			printSystemMessage(out, "Session '%s' active.", opts.SessionID)
		}
	}

	runOpts := []runner.Option{
		runner.WithInputHandler(handler),
		runner.WithLogger(stack.Logger),
		runner.WithSanitizer(stack.Sanitizer),
	}
	if opts.SessionID != "" {
		runOpts = append(runOpts, runner.WithSessionID(opts.SessionID), runner.WithStore(stack.Store))
	}

	state, err := runner.NewRunner(runOpts...).Run(ctx, stack.Engine, initial)
	if err != nil && !isInterrupted(err) {
		return state, err
	}
	if !opts.JSON && state != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			printSystemMessage(out, "Interrupted at %s.", whereabouts(state))
		} else if opts.SessionID != "" {
			printSystemMessage(out, "Session '%s' saved at %s.", opts.SessionID, whereabouts(state))
		}
	}
	return state, nil
}

func hydrate(ctx context.Context, stack *Stack, opts ChatOptions) (*domain.State, error) {
	if opts.SessionID == "" {
		return nil, nil
	}
	if opts.Fresh {
		if err := stack.Store.Delete(ctx, opts.SessionID); err != nil {
			return nil, fmt.Errorf("resetting session %s: %w", opts.SessionID, err)
		}
		return nil, nil
	}

	state, err := stack.Store.Load(ctx, opts.SessionID)
	switch {
	case err == nil:
		stack.Logger.Info("session resumed", "session_id", opts.SessionID, "level_id", state.CurrentLevel)
		return state, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("loading session %s: %w", opts.SessionID, err)
	}
}
