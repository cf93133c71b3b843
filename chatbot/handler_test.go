package chatbot_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/korylprince/library-desk-server/chatbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoRunner replies with the input in upper case, optionally waiting on block
type echoRunner struct {
	block   chan struct{}
	started chan struct{}
}

func (r *echoRunner) Run(ctx context.Context, conv *chatbot.Conversation, input string) string {
	if r.block != nil {
		r.started <- struct{}{}
		<-r.block
	}
	return strings.ToUpper(input)
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) chatbot.ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg chatbot.ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHandlerTurns(t *testing.T) {
	store := chatbot.NewLRUStore(1 << 20)
	srv := httptest.NewServer(chatbot.NewHandler(store, new(echoRunner), discard))
	defer srv.Close()

	conn := dial(t, srv, "")

	require.NoError(t, conn.WriteJSON(chatbot.ClientMessage{Message: "   "}))
	assert.Equal(t, chatbot.ServerMessage{Type: chatbot.MessageTypeError, Error: "Message cannot be empty"}, read(t, conn))

	require.NoError(t, conn.WriteJSON(chatbot.ClientMessage{Message: "find clean code"}))
	assert.Equal(t, chatbot.ServerMessage{Type: chatbot.MessageTypeText, Content: "FIND CLEAN CODE"}, read(t, conn))
	done := read(t, conn)
	assert.Equal(t, chatbot.MessageTypeDone, done.Type)
	require.True(t, chatbot.ValidID(done.SessionID))
	assert.True(t, strings.HasPrefix(done.SessionName, "Session "))

	require.NoError(t, conn.WriteJSON(chatbot.ClientMessage{Message: "and order it"}))
	assert.Equal(t, "AND ORDER IT", read(t, conn).Content)
	assert.Equal(t, done.SessionID, read(t, conn).SessionID)

	conv, err := store.Get(done.SessionID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, chatbot.Message{Role: chatbot.RoleUser, Content: "and order it"}, conv.Messages[2])
	assert.Equal(t, chatbot.Message{Role: chatbot.RoleAssistant, Content: "AND ORDER IT"}, conv.Messages[3])

	// switching to a new session mid-connection
	other, err := store.Create("other")
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(chatbot.ClientMessage{Message: "hello", SessionID: other.ID}))
	read(t, conn)
	done = read(t, conn)
	assert.Equal(t, other.ID, done.SessionID)
	assert.Equal(t, "other", done.SessionName)

	require.NoError(t, conn.WriteJSON(chatbot.ClientMessage{Message: "hello", SessionID: "3a4b5c6d-0000-4000-8000-000000000000"}))
	assert.Equal(t, "Session not found", read(t, conn).Error)
}

func TestHandlerUnknownSession(t *testing.T) {
	srv := httptest.NewServer(chatbot.NewHandler(chatbot.NewLRUStore(1<<20), new(echoRunner), discard))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?session_id=missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerBusySession(t *testing.T) {
	store := chatbot.NewLRUStore(1 << 20)
	conv, err := store.Create("shared")
	require.NoError(t, err)

	runner := &echoRunner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	srv := httptest.NewServer(chatbot.NewHandler(store, runner, discard))
	defer srv.Close()

	first := dial(t, srv, "?session_id="+conv.ID)
	second := dial(t, srv, "?session_id="+conv.ID)

	require.NoError(t, first.WriteJSON(chatbot.ClientMessage{Message: "slow"}))
	<-runner.started

	require.NoError(t, second.WriteJSON(chatbot.ClientMessage{Message: "fast"}))
	assert.Equal(t, "Session is busy with another request", read(t, second).Error)

	close(runner.block)
	assert.Equal(t, "SLOW", read(t, first).Content)
	assert.Equal(t, chatbot.MessageTypeDone, read(t, first).Type)

	// the lock is released after the turn
	require.NoError(t, second.WriteJSON(chatbot.ClientMessage{Message: "fast"}))
	assert.Equal(t, "FAST", read(t, second).Content)
}
