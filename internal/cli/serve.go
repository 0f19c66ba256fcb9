package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/arbor/internal/config"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/arbor/pkg/adapters/mcp"
)

// ShutdownTimeout bounds how long in-flight requests may take once shutdown starts.
var ShutdownTimeout = 5 * time.Second

// NewHTTPHandler mounts the chat API for stack.
func NewHTTPHandler(stack *Stack, cfg *config.Config) (http.Handler, error) {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(stack.Logger),
		httpAdapter.WithAllowedOrigins(cfg.HTTP.AllowedOrigins...),
		httpAdapter.WithInputLimit(stack.Sanitizer.MaxSize),
		httpAdapter.WithRequestValidation(true),
	}
	if stack.Registry != nil {
		opts = append(opts, httpAdapter.WithMetrics(stack.Registry))
	}
	return httpAdapter.NewHandler(stack.Engine, stack.Manager, opts...)
}

// Serve listens on cfg.HTTP.Addr until ctx is canceled.
func Serve(ctx context.Context, stack *Stack, cfg *config.Config) error {
	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.HTTP.Addr, err)
	}
	return ServeListener(ctx, ln, stack, cfg)
}

// ServeListener serves the chat API on ln and shuts down gracefully when ctx is done.
func ServeListener(ctx context.Context, ln net.Listener, stack *Stack, cfg *config.Config) error {
	handler, err := NewHTTPHandler(stack, cfg)
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		stack.Logger.Info("arbor server listening", "addr", ln.Addr().String(), "source", cfg.Source)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		stack.Logger.Info("shutting down", "timeout", ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		stack.Logger.Info("arbor server stopped")
		return nil
	}
}

// ServeMCP runs the MCP server over "stdio" or "sse".
func ServeMCP(ctx context.Context, stack *Stack, transport string, port int) error {
	srv := mcpAdapter.NewServer(stack.Engine, stack.Manager,
		mcpAdapter.WithLogger(stack.Logger),
		mcpAdapter.WithInputLimit(stack.Sanitizer.MaxSize),
	)

	switch transport {
	case "stdio":
		stack.Logger.Info("starting MCP server", "transport", transport)
		return srv.ServeStdio()
	case "sse":
		stack.Logger.Info("starting MCP server", "transport", transport, "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
	}
}
