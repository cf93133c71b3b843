package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/korylprince/library-desk-server/api"
	"github.com/korylprince/library-desk-server/chatbot"
)

//AuditReader reads back the audit log of a chat session
type AuditReader interface {
	Messages(ctx context.Context, sessionID string) ([]*api.AuditMessage, error)
	ToolCalls(ctx context.Context, sessionID string) ([]*api.AuditToolCall, error)
}

func checkStoreError(err error) *handlerResponse {
	if err == nil {
		return nil
	}
	if errors.Is(err, chatbot.ErrConversationNotFound) {
		return handleError(http.StatusNotFound, err)
	}
	return handleError(http.StatusInternalServerError, err)
}

func decodeSessionRequest(r *http.Request) (*SessionRequest, *handlerResponse) {
	req := new(SessionRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}
	return req, nil
}

//GET /sessions/
func handleListSessions(store chatbot.ConversationStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		infos, err := store.List()
		if resp := checkStoreError(err); resp != nil {
			return resp
		}
		return &handlerResponse{Code: http.StatusOK, Body: &SessionsResponse{Sessions: infos}}
	}
}

//POST /sessions/
func handleCreateSession(store chatbot.ConversationStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		req, resp := decodeSessionRequest(r)
		if resp != nil {
			return resp
		}

		conv, err := store.Create(req.Name)
		if resp := checkStoreError(err); resp != nil {
			return resp
		}
		return &handlerResponse{Code: http.StatusOK, Body: conv}
	}
}

//GET /sessions/:id
func handleReadSession(store chatbot.ConversationStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		conv, err := store.Get(mux.Vars(r)["id"])
		if resp := checkStoreError(err); resp != nil {
			return resp
		}
		return &handlerResponse{Code: http.StatusOK, Body: conv}
	}
}

//POST /sessions/:id/name
func handleRenameSession(store chatbot.ConversationStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		req, resp := decodeSessionRequest(r)
		if resp != nil {
			return resp
		}
		if err := api.ValidateString("name", req.Name, 255); err != nil {
			return handleError(http.StatusBadRequest, err)
		}

		id := mux.Vars(r)["id"]
		if resp := checkStoreError(store.Rename(id, req.Name)); resp != nil {
			return resp
		}

		conv, err := store.Get(id)
		if resp := checkStoreError(err); resp != nil {
			return resp
		}
		return &handlerResponse{Code: http.StatusOK, Body: conv}
	}
}

//GET /sessions/:id/audit
func handleReadSessionAudit(audit AuditReader) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		id := mux.Vars(r)["id"]

		msgs, err := audit.Messages(r.Context(), id)
		if err != nil {
			return handleError(http.StatusInternalServerError, err)
		}

		calls, err := audit.ToolCalls(r.Context(), id)
		if err != nil {
			return handleError(http.StatusInternalServerError, err)
		}

		return &handlerResponse{Code: http.StatusOK, Body: &AuditResponse{Messages: msgs, ToolCalls: calls}}
	}
}
