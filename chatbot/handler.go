package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/korylprince/library-desk-server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Runner runs one conversation turn
type Runner interface {
	Run(ctx context.Context, conv *Conversation, input string) string
}

// Handler handles WebSocket chat connections. A connection can carry many turns and
// at most one turn runs per session at a time.
type Handler struct {
	store  ConversationStore
	runner Runner
	log    *slog.Logger

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewHandler creates a new chat handler
func NewHandler(store ConversationStore, runner Runner, log *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		runner: runner,
		log:    log,
		busy:   make(map[string]struct{}),
	}
}

// acquire marks the session as busy, returning false if a turn is already running
func (h *Handler) acquire(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.busy[id]; ok {
		return false
	}
	h.busy[id] = struct{}{}
	return true
}

func (h *Handler) release(id string) {
	h.mu.Lock()
	delete(h.busy, id)
	h.mu.Unlock()
}

// ServeHTTP handles the WebSocket upgrade and chat loop
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log
	if op, ok := r.Context().Value(api.OperatorKey).(*api.Operator); ok {
		log = log.With("operator", op.Email)
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID != "" {
		if _, err := h.store.Get(sessionID); err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var clientMsg ClientMessage
		if err := conn.ReadJSON(&clientMsg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("chat connection closed", "err", err)
			}
			return
		}

		if clientMsg.SessionID != "" {
			sessionID = clientMsg.SessionID
		}

		if strings.TrimSpace(clientMsg.Message) == "" {
			if err := h.sendError(conn, "Message cannot be empty"); err != nil {
				return
			}
			continue
		}

		var resp ServerMessage
		sessionID, resp = h.turn(r.Context(), log, sessionID, clientMsg.Message)
		if resp.Type == MessageTypeError {
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(ServerMessage{Type: MessageTypeText, Content: resp.Content}); err != nil {
			log.Warn("could not write reply", "session", sessionID, "err", err)
			return
		}
		if err := conn.WriteJSON(ServerMessage{Type: MessageTypeDone, SessionID: resp.SessionID, SessionName: resp.SessionName}); err != nil {
			return
		}
	}
}

// turn runs one turn in the given session, creating a session if id is empty.
// It returns the session id in use and either a done message carrying the reply or an error message.
func (h *Handler) turn(ctx context.Context, log *slog.Logger, id, input string) (string, ServerMessage) {
	var conv *Conversation
	var err error

	if id == "" {
		conv, err = h.store.Create("")
		if err != nil {
			log.Error("could not create session", "err", err)
			return id, ServerMessage{Type: MessageTypeError, Error: "Failed to create session"}
		}
		id = conv.ID
	}

	if !h.acquire(id) {
		return id, ServerMessage{Type: MessageTypeError, Error: "Session is busy with another request"}
	}
	defer h.release(id)

	if conv == nil {
		conv, err = h.store.Get(id)
		if errors.Is(err, ErrConversationNotFound) {
			return id, ServerMessage{Type: MessageTypeError, Error: "Session not found"}
		} else if err != nil {
			log.Error("could not load session", "session", id, "err", err)
			return id, ServerMessage{Type: MessageTypeError, Error: "Failed to load session"}
		}
	}

	reply := h.runner.Run(ctx, conv, input)

	if err = h.store.AddMessages(id, []Message{
		{Role: RoleUser, Content: input},
		{Role: RoleAssistant, Content: reply},
	}); err != nil {
		log.Error("could not save session", "session", id, "err", err)
	}

	return id, ServerMessage{Type: MessageTypeDone, Content: reply, SessionID: id, SessionName: conv.Name}
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return conn.WriteJSON(ServerMessage{
		Type:  MessageTypeError,
		Error: msg,
	})
}
