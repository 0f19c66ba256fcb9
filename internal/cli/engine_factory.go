package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// StackOptions selects the pieces Build wires together.
type StackOptions struct {
	// SessionDir keeps sessions on disk when Redis is not configured.
	// Empty means sessions live in memory.
	SessionDir string

	// Metrics registers the engine counters on a private registry.
	Metrics bool

	Logger *slog.Logger
}

// Stack is the engine and the session plumbing shared by every command.
type Stack struct {
	Engine   *arbor.Engine
	Store    ports.SessionStore
	Manager  *session.Manager
	Registry *prometheus.Registry
	Logger   *slog.Logger
	// Sanitizer bounds chat messages on every surface.
	Sanitizer runner.Sanitizer

	closers []io.Closer
}

// Build loads the tree and prepares the session store described by cfg.
func Build(ctx context.Context, cfg *config.Config, opts StackOptions) (*Stack, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Stack{Logger: logger, Sanitizer: cfg.Sanitizer()}

	hooks := observability.LoggingHooks(logger)
	if opts.Metrics {
		s.Registry = prometheus.NewRegistry()
		s.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks = observability.CombineHooks(hooks, observability.NewMetrics(s.Registry).Hooks())
	}

	engine, err := BuildEngine(ctx, cfg, logger, hooks)
	if err != nil {
		return nil, err
	}
	s.Engine = engine

	store, locker, closer, err := BuildStore(ctx, cfg, opts.SessionDir)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	s.Store = store

	managerOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	s.Manager = session.NewManager(store, managerOpts...)
	return s, nil
}

// Close releases backend connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// BuildEngine creates the engine for cfg.Source with the navigation settings applied.
func BuildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*arbor.Engine, error) {
	opts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithLifecycleHooks(hooks),
		arbor.WithStrictNavigation(cfg.Navigation.Strict),
		arbor.WithRewindOnBack(cfg.Navigation.RewindOnBack),
	}
	if cfg.Root != "" {
		opts = append(opts, arbor.WithRoot(cfg.Root))
	}

	engine, err := arbor.New(ctx, cfg.Source, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing arbor from %s: %w", cfg.Source, err)
	}
	return engine, nil
}

// BuildStore picks Redis when configured, otherwise files under dir, otherwise memory.
// The store is wrapped with redaction and encryption as configured.
// The returned locker and closer are nil unless Redis is used.
func BuildStore(ctx context.Context, cfg *config.Config, dir string) (ports.SessionStore, ports.DistributedLocker, io.Closer, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
		closer io.Closer
	)

	switch {
	case cfg.Redis.Addr != "":
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Client().Close()
			return nil, nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		store, closer = rs, rs.Client()
		locker = redis.NewLocker(rs.Client(), rs.Prefix())
	case dir != "":
		store = file.NewStore(dir)
	default:
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if cfg.Security.RedactCompleted {
		mws = append(mws, middleware.NewPIIMiddleware())
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}
