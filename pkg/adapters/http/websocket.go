package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/runner"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// wsConn serializes writes; gorilla connections allow a single concurrent writer.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConn) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(payload)
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range s.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// ServeWebsocket handles GET /ws.
//
// With ?session_id= the stored session is resumed and its level redrawn;
// otherwise a new session is started. Clients then send runner.Command
// frames and receive runner.Response frames. Updates applied to the same
// session through REST are pushed as well.
func (s *Server) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	raw, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn := &wsConn{Conn: raw}
	defer conn.Close()

	ctx := r.Context()
	var first *runner.Response
	if id := r.URL.Query().Get("session_id"); id != "" {
		first, err = s.resume(ctx, id)
	} else {
		first, err = s.start(ctx, "")
	}
	if err != nil {
		_ = conn.writeJSON(errorResponse{Error: err.Error()})
		return
	}
	sessionID := first.State.SessionID

	updates, unsubscribe := s.Streams.Subscribe(sessionID)
	defer unsubscribe()

	if err := conn.writeJSON(first); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range updates {
			if err := conn.write(payload); err != nil {
				return
			}
		}
	}()

	s.readCommands(ctx, conn, sessionID, updates)
	unsubscribe()
	<-done
}

func (s *Server) readCommands(ctx context.Context, conn *wsConn, sessionID string, updates <-chan []byte) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session_id", sessionID, "error", err)
			}
			return
		}

		var cmd runner.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = conn.writeJSON(errorResponse{Error: "invalid command"})
			continue
		}
		if cmd.Type == runner.CommandQuit {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(writeWait))
			return
		}

		// Success is delivered through the subscription, in commit order.
		if _, err := s.apply(ctx, sessionID, cmd, updates); err != nil {
			_ = conn.writeJSON(errorResponse{Error: err.Error()})
		}
	}
}
