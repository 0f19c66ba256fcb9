package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, ts *testServer, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func TestWebsocket_Conversation(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "")

	var first runner.Response
	require.NoError(t, conn.ReadJSON(&first))
	require.NotEmpty(t, first.State.SessionID)
	assert.Equal(t, domain.StageAwaitingGreeting, first.State.Stage)

	require.NoError(t, conn.WriteJSON(runner.Command{Type: runner.CommandMessage, Text: "good morning"}))
	var reply runner.Response
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, domain.StageAwaitingName, reply.State.Stage)

	require.NoError(t, conn.WriteJSON(runner.Command{Type: runner.CommandBack}))
	var failure errorResponse
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Equal(t, domain.ErrIntakeIncomplete.Error(), failure.Error)
}

func TestWebsocket_RepliesArriveInOrder(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "")

	var first runner.Response
	require.NoError(t, conn.ReadJSON(&first))

	inputs := []string{"hi", "Ana", "0501234567"}
	for i := 0; i < 2*subscriberBuffer; i++ {
		inputs = append(inputs, "zzz")
	}
	for _, text := range inputs {
		require.NoError(t, conn.WriteJSON(runner.Command{Type: runner.CommandMessage, Text: text}))
	}

	var replies []runner.Response
	for range inputs {
		var reply runner.Response
		require.NoError(t, conn.ReadJSON(&reply))
		replies = append(replies, reply)
	}
	assert.Equal(t, domain.StageAwaitingName, replies[0].State.Stage)
	assert.Equal(t, domain.StageAwaitingPhone, replies[1].State.Stage)
	assert.True(t, replies[2].State.IntroCompleted)
	assert.Equal(t, "level1", replies[len(replies)-1].State.CurrentLevel)
}

func TestWebsocket_ResumeReceivesRESTUpdates(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s1"}).StatusCode)

	conn := dial(t, ts, "?session_id=s1")
	var first runner.Response
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "s1", first.State.SessionID)
	require.Eventually(t, func() bool { return ts.srv.Streams.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/sessions/s1/messages", map[string]string{"text": "hey"}).StatusCode)

	var pushed runner.Response
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, domain.StageAwaitingName, pushed.State.Stage)
}

func TestWebsocket_UnknownSession(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "?session_id=missing")

	var failure errorResponse
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Contains(t, failure.Error, domain.ErrSessionNotFound.Error())
}
