package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// CommandType identifies what the user asked for.
type CommandType string

const (
	CommandMessage  CommandType = "message"
	CommandSelect   CommandType = "select"
	CommandBack     CommandType = "back"
	CommandMainMenu CommandType = "menu"
	CommandQuit     CommandType = "quit"
)

// Command is a transport-neutral user input.
// For CommandSelect, Option takes precedence but must be one of the options
// the current level offers; otherwise Index (0-based) is resolved against them.
type Command struct {
	Type   CommandType    `json:"type"`
	Text   string         `json:"text,omitempty"`
	Index  int            `json:"index,omitempty"`
	Option *domain.Option `json:"option,omitempty"`
}

// ErrUnknownCommand is returned for command types Dispatch cannot apply.
var ErrUnknownCommand = errors.New("unknown command")

// ErrOptionNotFound is returned when a selection does not resolve to an option.
var ErrOptionNotFound = errors.New("option not found")

// Response combines state and rendering actions for rich clients (Web, MCP, etc).
type Response struct {
	State   *domain.State          `json:"state"`
	Actions []domain.ActionRequest `json:"actions"`
}

// ParseCommand reads a terminal line. Slash commands map to navigation;
// anything else is a message.
func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)
	switch strings.ToLower(trimmed) {
	case "/back", "/b":
		return Command{Type: CommandBack}
	case "/menu", "/m", "/home":
		return Command{Type: CommandMainMenu}
	case "/quit", "/q", "/exit":
		return Command{Type: CommandQuit}
	}
	return Command{Type: CommandMessage, Text: trimmed}
}

// ResolveOption returns the option at index (0-based) of the session's current level.
func ResolveOption(tree *domain.ContentTree, state *domain.State, index int) (domain.Option, error) {
	level, found := tree.Lookup(state.CurrentLevel)
	if !found || index < 0 || index >= len(level.Options) {
		return domain.Option{}, fmt.Errorf("%w: index %d at level %q", ErrOptionNotFound, index, state.CurrentLevel)
	}
	return level.Options[index], nil
}

func resolveSelection(tree *domain.ContentTree, state *domain.State, cmd Command) (domain.Option, error) {
	if state == nil {
		return domain.Option{}, domain.ErrNilState
	}
	if !state.IntroCompleted {
		return domain.Option{}, domain.ErrIntakeIncomplete
	}
	if cmd.Option == nil {
		return ResolveOption(tree, state, cmd.Index)
	}
	level, _ := tree.Lookup(state.CurrentLevel)
	for _, opt := range level.Options {
		if opt == *cmd.Option {
			return opt, nil
		}
	}
	return domain.Option{}, fmt.Errorf("%w: %q is not offered at level %q", ErrOptionNotFound, cmd.Option.Text, state.CurrentLevel)
}

// NumericSelection interprets a message such as "2" as the second option of
// the current level. It only applies once the intake is done, so phone
// numbers always reach the engine as text.
func NumericSelection(tree *domain.ContentTree, state *domain.State, cmd Command) (Command, bool) {
	if cmd.Type != CommandMessage || !state.IntroCompleted {
		return cmd, false
	}
	n, err := strconv.Atoi(cmd.Text)
	if err != nil {
		return cmd, false
	}
	if _, err := ResolveOption(tree, state, n-1); err != nil {
		return cmd, false
	}
	return Command{Type: CommandSelect, Index: n - 1}, true
}

// DispatchOption configures a single Dispatch call.
type DispatchOption func(*dispatchConfig)

type dispatchConfig struct {
	sanitizer Sanitizer
}

// WithDispatchSanitizer sets the input limits applied to message commands.
func WithDispatchSanitizer(s Sanitizer) DispatchOption {
	return func(c *dispatchConfig) {
		c.sanitizer = s
	}
}

// Dispatch applies a command to a state through the engine.
func Dispatch(ctx context.Context, engine ports.ChatEngine, state *domain.State, cmd Command, opts ...DispatchOption) (*Response, error) {
	var cfg dispatchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		next    *domain.State
		actions []domain.ActionRequest
		err     error
	)

	switch cmd.Type {
	case CommandMessage:
		text, sErr := cfg.sanitizer.Clean(cmd.Text)
		if sErr != nil {
			return nil, sErr
		}
		next, actions, err = engine.Submit(ctx, state, text)
	case CommandSelect:
		opt, sErr := resolveSelection(engine.Tree(), state, cmd)
		if sErr != nil {
			return nil, sErr
		}
		next, actions, err = engine.Select(ctx, state, opt)
	case CommandBack:
		next, actions, err = engine.Back(ctx, state)
	case CommandMainMenu:
		next, actions, err = engine.MainMenu(ctx, state)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	if err != nil {
		return nil, err
	}

	if actions == nil {
		actions = []domain.ActionRequest{}
	}
	return &Response{State: next, Actions: actions}, nil
}
