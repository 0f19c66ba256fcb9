package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TreeURI is the resource exposing the loaded content tree.
const TreeURI = "arbor://tree"

// ChatResponse aligns with the HTTP API and provides a unified structure across adapters.
type ChatResponse struct {
	State   *domain.State          `json:"state" jsonschema_description:"The session state after the call"`
	Actions []domain.ActionRequest `json:"actions" jsonschema_description:"Ordered render requests (messages and controls)"`
}

// SessionArgs identifies the session a tool operates on.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// MessageArgs carries free text typed by the user.
type MessageArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// SelectArgs picks an option of the current level by position (0-based).
type SelectArgs struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

// Server exposes chat sessions as MCP tools.
type Server struct {
	engine    ports.ChatEngine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
	sanitizer runner.Sanitizer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInputLimit caps the size of chat messages in bytes.
func WithInputLimit(maxSize int) Option {
	return func(s *Server) {
		s.sanitizer = runner.NewSanitizer(maxSize)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.ChatEngine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over Server-Sent Events until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	allowAll := cors.AllowAll().Handler
	mux := http.NewServeMux()
	mux.Handle("/sse", allowAll(sseServer.SSEHandler()))
	mux.Handle("/message", allowAll(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new chat session. The bot asks for a greeting first."),
		mcp.WithString("session_id", mcp.Description("Session ID to use (optional, generated when omitted)")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send free text: greeting, name and phone during intake, then an option label or part of it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("text", mcp.Required(), mcp.Description("What the user typed")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleMessage))

	s.mcpServer.AddTool(mcp.NewTool("select_option",
		mcp.WithDescription("Click an option of the current level by its position (0-based)."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("index", mcp.Required(), mcp.Min(0), mcp.Description("Option position")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Return to the previous level."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.navigation(runner.CommandBack)))

	s.mcpServer.AddTool(mcp.NewTool("main_menu",
		mcp.WithDescription("Jump to the root level."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.navigation(runner.CommandMainMenu)))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show a session and redraw its current level."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (ChatResponse, error) {
	id := args.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	state, actions, err := s.engine.Start(ctx, id)
	if err != nil {
		return ChatResponse{}, err
	}
	if err := s.sessions.Create(ctx, state); err != nil {
		return ChatResponse{}, err
	}
	s.logger.Debug("MCP: session started", "session_id", id)
	return ChatResponse{State: state, Actions: actions}, nil
}

func (s *Server) handleMessage(ctx context.Context, request mcp.CallToolRequest, args MessageArgs) (ChatResponse, error) {
	return s.apply(ctx, args.SessionID, runner.Command{Type: runner.CommandMessage, Text: args.Text})
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args SelectArgs) (ChatResponse, error) {
	return s.apply(ctx, args.SessionID, runner.Command{Type: runner.CommandSelect, Index: args.Index})
}

func (s *Server) navigation(t runner.CommandType) func(context.Context, mcp.CallToolRequest, SessionArgs) (ChatResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (ChatResponse, error) {
		return s.apply(ctx, args.SessionID, runner.Command{Type: t})
	}
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (ChatResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return ChatResponse{}, err
	}
	actions, err := s.engine.Render(state)
	if err != nil {
		return ChatResponse{}, err
	}
	return ChatResponse{State: state, Actions: actions}, nil
}

// ErrMissingSessionID is returned by tools called without a session.
var ErrMissingSessionID = errors.New("session_id is required")

func (s *Server) apply(ctx context.Context, id string, cmd runner.Command) (ChatResponse, error) {
	if id == "" {
		return ChatResponse{}, ErrMissingSessionID
	}
	var actions []domain.ActionRequest
	state, err := s.sessions.Update(ctx, id, func(current *domain.State) (*domain.State, error) {
		resp, err := runner.Dispatch(ctx, s.engine, current, cmd, runner.WithDispatchSanitizer(s.sanitizer))
		if err != nil {
			return nil, err
		}
		actions = resp.Actions
		return resp.State, nil
	})
	if err != nil {
		s.logger.Warn("MCP: command rejected", "session_id", id, "command", cmd.Type, "error", err)
		return ChatResponse{}, err
	}
	return ChatResponse{State: state, Actions: actions}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Content Tree",
		mcp.WithResourceDescription("Every level of the decision tree with its options."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(dto.FromTree(s.engine.Tree()))
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreeURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
