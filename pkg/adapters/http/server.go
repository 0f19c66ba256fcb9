package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Server exposes chat sessions over REST and websocket.
type Server struct {
	Engine   ports.ChatEngine
	Sessions *session.Manager
	Streams  *StreamManager

	logger         *slog.Logger
	allowedOrigins []string
	gatherer       prometheus.Gatherer
	validate       bool
	sanitizer      runner.Sanitizer
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

// WithAllowedOrigins sets the CORS allow list. Defaults to "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithMetrics mounts GET /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithInputLimit caps the size of chat messages in bytes.
func WithInputLimit(maxSize int) Option {
	return func(s *Server) {
		s.sanitizer = runner.NewSanitizer(maxSize)
	}
}

// WithRequestValidation toggles OpenAPI request validation (enabled by default).
func WithRequestValidation(enabled bool) Option {
	return func(s *Server) {
		s.validate = enabled
	}
}

// NewServer wires a server around an engine and a session manager.
func NewServer(engine ports.ChatEngine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:         engine,
		Sessions:       sessions,
		Streams:        NewStreamManager(),
		logger:         logging.NewNop(),
		allowedOrigins: []string{"*"},
		validate:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.ChatEngine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	return NewServer(engine, sessions, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if s.validate {
		v, err := NewRequestValidator(openAPISpec)
		if err != nil {
			return nil, err
		}
		r.Use(v.Middleware)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openAPISpec)
	})
	r.Get("/tree", s.GetTree)
	r.Get("/ws", s.ServeWebsocket)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/messages", s.SendMessage)
			r.Post("/select", s.SelectOption)
			r.Post("/back", s.command(runner.CommandBack))
			r.Post("/menu", s.command(runner.CommandMainMenu))
		})
	})

	return r, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "arbor-http",
		"version":     strings.TrimSpace(arbor.Version),
		"api_version": apiVersion(),
	})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.FromTree(s.Engine.Tree()))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.start(r.Context(), body.SessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) start(ctx context.Context, id string) (*runner.Response, error) {
	if id == "" {
		id = uuid.NewString()
	}
	state, actions, err := s.Engine.Start(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Create(ctx, state); err != nil {
		return nil, err
	}
	s.logger.Info("session created", "session_id", id)
	return &runner.Response{State: state, Actions: actions}, nil
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resume(ctx context.Context, id string) (*runner.Response, error) {
	state, err := s.Sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	actions, err := s.Engine.Render(state)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []domain.ActionRequest{}
	}
	return &runner.Response{State: state, Actions: actions}, nil
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type messageRequest struct {
	Text string `json:"text"`
}

// SendMessage handles the POST /sessions/{id}/messages request.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respond(w, r, runner.Command{Type: runner.CommandMessage, Text: body.Text})
}

type selectRequest struct {
	Index  int            `json:"index"`
	Option *domain.Option `json:"option"`
}

// SelectOption handles the POST /sessions/{id}/select request.
func (s *Server) SelectOption(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respond(w, r, runner.Command{Type: runner.CommandSelect, Index: body.Index, Option: body.Option})
}

func (s *Server) command(t runner.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, runner.Command{Type: t})
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, cmd runner.Command) {
	resp, err := s.Apply(r.Context(), chi.URLParam(r, "id"), cmd)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Apply runs a command against a stored session under its lock, persists the
// result and broadcasts it to websocket subscribers.
func (s *Server) Apply(ctx context.Context, id string, cmd runner.Command) (*runner.Response, error) {
	return s.apply(ctx, id, cmd, nil)
}

// apply runs the turn and publishes its response while the session lock is
// held, so subscribers see turns in commit order. origin is never skipped.
func (s *Server) apply(ctx context.Context, id string, cmd runner.Command, origin <-chan []byte) (*runner.Response, error) {
	var resp *runner.Response
	err := s.Sessions.WithLock(ctx, id, func(ctx context.Context) error {
		current, err := s.Sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		next, err := runner.Dispatch(ctx, s.Engine, current, cmd, runner.WithDispatchSanitizer(s.sanitizer))
		if err != nil {
			return err
		}
		if err := s.Sessions.Store().Save(ctx, id, next.State); err != nil {
			return err
		}
		resp = next
		if payload, err := json.Marshal(resp); err == nil {
			s.Streams.Publish(ctx, id, payload, origin)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("command applied", "session_id", id, "command", cmd.Type, "level_id", resp.State.CurrentLevel)
	return resp, nil
}

// StatusFor maps domain and runner errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists), errors.Is(err, domain.ErrIntakeIncomplete):
		return http.StatusConflict
	case errors.Is(err, runner.ErrOptionNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runner.ErrInvalidUTF8),
		errors.Is(err, runner.ErrUnknownCommand), errors.Is(err, domain.ErrNilState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

// errorResponse is the body of every non-2xx JSON answer.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
