package runtime

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Engine is the core conversation runner.
type Engine struct {
	tree   *domain.ContentTree
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time

	// strictNavigation leaves the state untouched when a target level is missing.
	strictNavigation bool
	// rewindOnBack pops history without recording the level being left.
	rewindOnBack bool
}

var _ ports.ChatEngine = (*Engine)(nil)

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStrictNavigation keeps current level and history unchanged when a target is unknown.
func WithStrictNavigation(strict bool) Option {
	return func(e *Engine) {
		e.strictNavigation = strict
	}
}

// WithRewindOnBack makes Back a pure pop instead of a forward move to the popped level.
func WithRewindOnBack(rewind bool) Option {
	return func(e *Engine) {
		e.rewindOnBack = rewind
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine bound to a loaded content tree.
// A nil tree behaves as an empty one: every level is missing.
func NewEngine(tree *domain.ContentTree, opts ...Option) *Engine {
	if tree == nil {
		tree = domain.NewContentTree("", nil)
	}
	e := &Engine{
		tree:   tree,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tree returns the content tree the engine walks.
func (e *Engine) Tree() *domain.ContentTree {
	return e.tree
}

// Start creates a new session state and greets the user.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, []domain.ActionRequest, error) {
	state := domain.NewState(sessionID)
	e.logger.Debug("session started", "session_id", sessionID)
	if e.hooks.OnSessionStart != nil {
		base := e.event(domain.EventSessionStart, sessionID)
		e.hooks.OnSessionStart(ctx, &base)
	}
	return state, []domain.ActionRequest{e.bot(e.tree.Messages.Ready)}, nil
}

// Submit processes free text typed by the user.
// Blank input is ignored: no render requests and no state change.
func (e *Engine) Submit(ctx context.Context, state *domain.State, input string) (*domain.State, []domain.ActionRequest, error) {
	if state == nil {
		return nil, nil, domain.ErrNilState
	}

	text := strings.TrimSpace(input)
	if text == "" {
		return state.Clone(), nil, nil
	}

	next := state.Clone()
	actions := []domain.ActionRequest{domain.NewMessageAction(domain.ActorUser, text)}
	normalized := strings.ToLower(text)

	if !next.IntroCompleted {
		actions = append(actions, e.handleIntake(ctx, next, normalized)...)
		return next, actions, nil
	}

	actions = append(actions, e.route(ctx, next, normalized)...)
	return next, actions, nil
}

// Select activates an option control. Matching is bypassed: the option is taken as given.
func (e *Engine) Select(ctx context.Context, state *domain.State, option domain.Option) (*domain.State, []domain.ActionRequest, error) {
	if state == nil {
		return nil, nil, domain.ErrNilState
	}
	if !state.IntroCompleted {
		return nil, nil, domain.ErrIntakeIncomplete
	}

	next := state.Clone()
	actions := []domain.ActionRequest{domain.NewMessageAction(domain.ActorUser, option.Text)}
	if !option.HasNext() {
		return next, append(actions, e.bot(e.tree.Messages.OptionDeadEnd)), nil
	}

	actions = append(actions, e.navigateTo(ctx, next, option.Next, moveForward)...)
	return next, actions, nil
}

// Back returns to the most recently left level.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, []domain.ActionRequest, error) {
	if state == nil {
		return nil, nil, domain.ErrNilState
	}
	if !state.IntroCompleted {
		return nil, nil, domain.ErrIntakeIncomplete
	}

	next := state.Clone()
	return next, e.goBack(ctx, next), nil
}

// MainMenu jumps to the root level. History is left as is.
func (e *Engine) MainMenu(ctx context.Context, state *domain.State) (*domain.State, []domain.ActionRequest, error) {
	if state == nil {
		return nil, nil, domain.ErrNilState
	}
	if !state.IntroCompleted {
		return nil, nil, domain.ErrIntakeIncomplete
	}

	next := state.Clone()
	return next, e.navigateTo(ctx, next, e.tree.Root, moveMainMenu), nil
}

// Render returns the requests for the current level without changing state.
// Hosts use it to redraw a session after reconnecting.
func (e *Engine) Render(state *domain.State) ([]domain.ActionRequest, error) {
	if state == nil {
		return nil, domain.ErrNilState
	}
	if !state.InTree() {
		return nil, nil
	}
	level, found := e.tree.Lookup(state.CurrentLevel)
	if !found {
		return []domain.ActionRequest{e.bot(e.tree.Messages.NoInformation)}, nil
	}
	return e.renderLevel(level), nil
}

func (e *Engine) bot(text string) domain.ActionRequest {
	return domain.NewMessageAction(domain.ActorBot, text)
}

func (e *Engine) event(kind domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      kind,
		SessionID: sessionID,
	}
}
