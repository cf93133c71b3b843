package chatbot_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/korylprince/library-desk-server/api"
	"github.com/korylprince/library-desk-server/chatbot"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := api.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "desk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, api.CreateSchema(ctx, db, api.DialectSQLite))
	require.NoError(t, api.WithTx(ctx, db, func(ctx context.Context) error {
		_, err := api.Seed(ctx)
		return err
	}))

	return db
}

func stockOf(t *testing.T, db *sql.DB, isbn string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT stock FROM books WHERE isbn=?;", isbn).Scan(&n))
	return n
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table+";").Scan(&n))
	return n
}

type auditedMessage struct {
	session, role, content string
}

type auditedCall struct {
	session, name string
	args, result  interface{}
}

// memAuditor records audit entries in memory
type memAuditor struct {
	mu       sync.Mutex
	messages []auditedMessage
	calls    []auditedCall
}

func (a *memAuditor) Message(ctx context.Context, sessionID, role, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, auditedMessage{sessionID, role, content})
}

func (a *memAuditor) ToolCall(ctx context.Context, sessionID, name string, args, result interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, auditedCall{sessionID, name, args, result})
}

func newDispatcher(t *testing.T) (*chatbot.Dispatcher, *sql.DB, *memAuditor) {
	t.Helper()
	db := newTestDB(t)
	audit := new(memAuditor)
	return chatbot.NewDispatcher(db, audit, discard), db, audit
}

func toolCall(name, args string) chatbot.ToolCall {
	return chatbot.ToolCall{ID: "call_" + name, Type: "function", Function: chatbot.FunctionCall{Name: name, Arguments: args}}
}

// fakeCompleter returns a fixed response and records the last request
type fakeCompleter struct {
	resp *chatbot.ChatResponse
	err  error
	wait bool

	messages []chatbot.Message
	tools    []chatbot.Tool
}

func (c *fakeCompleter) Chat(ctx context.Context, messages []chatbot.Message, tools []chatbot.Tool) (*chatbot.ChatResponse, error) {
	c.messages = messages
	c.tools = tools
	if c.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.resp, c.err
}

func textResponse(content string) *chatbot.ChatResponse {
	return &chatbot.ChatResponse{Choices: []chatbot.Choice{{Message: chatbot.Message{Role: chatbot.RoleAssistant, Content: content}}}}
}

func toolResponse(calls ...chatbot.ToolCall) *chatbot.ChatResponse {
	return &chatbot.ChatResponse{Choices: []chatbot.Choice{{Message: chatbot.Message{Role: chatbot.RoleAssistant, ToolCalls: calls}}}}
}

const (
	isbnCleanCode  = "9780132350884"
	isbnPragmatic  = "9780201616224"
	isbnFluentPy   = "9781491957660"
	isbnCleanArch  = "9780134494166"
	isbnPyDataBook = "9781492055020"
)
