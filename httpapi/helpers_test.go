package httpapi_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/korylprince/library-desk-server/api"
	"github.com/korylprince/library-desk-server/chatbot"
	"github.com/korylprince/library-desk-server/httpapi"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"

	isbnCleanCode = "9780132350884"
	isbnFluentPy  = "9781491957660"
	isbnDDIA      = "9781492078005"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type upperRunner struct{}

func (upperRunner) Run(ctx context.Context, conv *chatbot.Conversation, input string) string {
	return strings.ToUpper(input)
}

type testServer struct {
	t        *testing.T
	db       *sql.DB
	router   http.Handler
	log      *bytes.Buffer
	audit    *api.AuditLog
	sessions *chatbot.LRUStore
	key      string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := api.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "desk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, api.CreateSchema(ctx, db, api.DialectSQLite))
	require.NoError(t, api.WithTx(ctx, db, func(ctx context.Context) error {
		if _, err := api.Seed(ctx); err != nil {
			return err
		}
		_, _, err := api.EnsureOperator(ctx, adminEmail, adminPassword, "Desk Admin")
		return err
	}))

	audit, err := api.NewAuditLog(db, api.DialectSQLite, discard)
	require.NoError(t, err)

	store := chatbot.NewLRUStore(1 << 20)
	buf := new(bytes.Buffer)

	s := &testServer{
		t:        t,
		db:       db,
		log:      buf,
		audit:    audit,
		sessions: store,
		router: httpapi.NewRouter(buf, httpapi.NewMemorySessionStore(ctx, time.Hour, 0, discard), db, &httpapi.ChatConfig{
			Store:   store,
			Audit:   audit,
			Handler: chatbot.NewHandler(store, upperRunner{}, discard),
		}),
	}

	var auth httpapi.AuthenticateResponse
	code := s.do("POST", "/auth", map[string]string{"email": adminEmail, "password": adminPassword}, &auth)
	require.Equal(t, http.StatusOK, code)
	s.key = auth.SessionKey

	return s
}

//do sends a request to the router and decodes the response into out if it's not nil
func (s *testServer) do(method, path string, body interface{}, out interface{}) int {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, "/api/1.0"+path, r)
	if method != "GET" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.key != "" {
		req.Header.Set("X-Session-Key", s.key)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(s.t, json.NewDecoder(w.Body).Decode(out), w.Body.String())
	}

	return w.Code
}

func (s *testServer) stockOf(isbn string) int {
	s.t.Helper()
	var n int
	require.NoError(s.t, s.db.QueryRow("SELECT stock FROM books WHERE isbn=?;", isbn).Scan(&n))
	return n
}
