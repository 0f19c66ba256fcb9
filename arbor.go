package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/file"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Engine is the high-level entry point for the Arbor library.
// It loads a content tree once and answers every conversation operation
// against it. Reload swaps in a freshly loaded tree for new calls.
type Engine struct {
	runtime     atomic.Pointer[runtime.Engine]
	loader      ports.TreeLoader
	runtimeOpts []runtime.Option
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	root        string
	messages    *domain.Messages
	Name        string
}

var _ ports.ChatEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom TreeLoader, bypassing source detection.
func WithLoader(l ports.TreeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRoot overrides the main menu level declared by the source.
func WithRoot(levelID string) Option {
	return func(e *Engine) {
		e.root = levelID
	}
}

// WithMessages overrides bot texts on top of those declared by the source.
func WithMessages(m domain.Messages) Option {
	return func(e *Engine) {
		e.messages = &m
	}
}

// WithStrictNavigation leaves the session untouched when a link points to a missing level.
func WithStrictNavigation(strict bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStrictNavigation(strict))
	}
}

// WithRewindOnBack makes Back a pure history pop.
func WithRewindOnBack(rewind bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRewindOnBack(rewind))
	}
}

// NewLoader picks a loader for source: a directory is read through Loam,
// anything else (file path, file:// or http(s) URL) as a JSON/YAML document.
func NewLoader(source string, logger *slog.Logger) (ports.TreeLoader, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", domain.ErrTreeLoad)
	}
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return loamAdapter.Open(source)
	}
	return file.New(source, file.WithLogger(logger)), nil
}

// New initializes a new Arbor Engine and loads its tree.
// If WithLoader is provided, source only labels the engine.
func New(ctx context.Context, source string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if source != "" {
		eng.Name = filepath.Base(source)
		eng.logger = eng.logger.With("tree", eng.Name)
	}

	if eng.loader == nil {
		loader, err := NewLoader(source, eng.logger)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}

	if err := eng.Reload(ctx); err != nil {
		return nil, err
	}
	return eng, nil
}

// Reload loads the tree again. On failure the current tree stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	tree, err := e.loader.Load(ctx)
	if err != nil {
		return err
	}
	if e.root != "" || e.messages != nil {
		copied := *tree
		tree = &copied
	}
	if e.root != "" {
		tree.Root = e.root
	}
	if e.messages != nil {
		tree.Messages = tree.Messages.Merge(*e.messages)
	}

	opts := []runtime.Option{
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	}
	opts = append(opts, e.runtimeOpts...)

	e.runtime.Store(runtime.NewEngine(tree, opts...))
	e.logger.Info("content tree ready", "root", tree.Root, "levels", tree.Len())
	return nil
}

func (e *Engine) current() *runtime.Engine {
	return e.runtime.Load()
}

// Start creates a new session state and the ready message.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, []domain.ActionRequest, error) {
	return e.current().Start(ctx, sessionID)
}

// Submit processes free text typed by the user.
func (e *Engine) Submit(ctx context.Context, state *domain.State, input string) (*domain.State, []domain.ActionRequest, error) {
	return e.current().Submit(ctx, state, input)
}

// Select activates an option control.
func (e *Engine) Select(ctx context.Context, state *domain.State, option domain.Option) (*domain.State, []domain.ActionRequest, error) {
	return e.current().Select(ctx, state, option)
}

// Back returns to the previous level.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, []domain.ActionRequest, error) {
	return e.current().Back(ctx, state)
}

// MainMenu jumps to the root level.
func (e *Engine) MainMenu(ctx context.Context, state *domain.State) (*domain.State, []domain.ActionRequest, error) {
	return e.current().MainMenu(ctx, state)
}

// Render redraws the current level without changing state.
func (e *Engine) Render(state *domain.State) ([]domain.ActionRequest, error) {
	return e.current().Render(state)
}

// Tree returns the loaded content tree.
func (e *Engine) Tree() *domain.ContentTree {
	return e.current().Tree()
}

// Loader returns the underlying TreeLoader used by the engine.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}
