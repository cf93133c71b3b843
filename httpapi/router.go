package httpapi

import (
	"database/sql"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/korylprince/library-desk-server/chatbot"
)

//ChatConfig holds the chat session services. Handler serves the WebSocket chat.
type ChatConfig struct {
	Store   chatbot.ConversationStore
	Audit   AuditReader
	Handler http.Handler
}

//NewRouter returns an HTTP router for the HTTP API
func NewRouter(w io.Writer, s SessionStore, db *sql.DB, chat *ChatConfig) http.Handler {

	//construct middleware
	var m = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(authMiddleware(txMiddleware(h, db), s, db)), w)
	}

	//routes that don't touch the repository hold no transaction
	var noTx = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(authMiddleware(h, s, db)), w)
	}

	r := mux.NewRouter()

	r.Path("/books/").Methods("GET").Handler(m(handleFindBooks))
	r.Path("/books/resolve").Methods("GET").Handler(m(handleResolveBooks))
	r.Path("/books/{isbn}/restock").Methods("POST").Handler(m(handleRestockBook))
	r.Path("/books/{isbn}/price").Methods("POST").Handler(m(handleUpdatePrice))

	r.Path("/orders/").Methods("POST").Handler(m(handleCreateOrder))
	r.Path("/orders/{id:[0-9]+}").Methods("GET").Handler(m(handleReadOrderStatus))

	r.Path("/inventory/").Methods("GET").Handler(m(handleReadInventorySummary))

	r.Path("/customers/resolve").Methods("GET").Handler(m(handleResolveCustomer))

	r.Path("/operators/").Methods("POST").Handler(m(handleCreateOperator))
	r.Path("/operators/{id:[0-9]+}").Methods("GET").Handler(m(handleReadOperator))
	r.Path("/operators/{id:[0-9]+}/password").Methods("POST").Handler(m(handleChangeOperatorPassword))

	r.Path("/auth").Methods("POST").Handler(logMiddleware(jsonMiddleware(txMiddleware(handleAuthenticate(s), db)), w))

	if chat != nil {
		r.Path("/sessions/").Methods("GET").Handler(noTx(handleListSessions(chat.Store)))
		r.Path("/sessions/").Methods("POST").Handler(noTx(handleCreateSession(chat.Store)))
		r.Path("/sessions/{id}").Methods("GET").Handler(noTx(handleReadSession(chat.Store)))
		r.Path("/sessions/{id}/name").Methods("POST").Handler(noTx(handleRenameSession(chat.Store)))
		r.Path("/sessions/{id}/audit").Methods("GET").Handler(noTx(handleReadSessionAudit(chat.Audit)))

		//WebSocket chat (auth via header or key query parameter, no JSON middleware)
		r.Path("/chat").Handler(wsAuthMiddleware(chat.Handler, s, db, w))
	}

	r.NotFoundHandler = noTx(notFoundHandler)

	return http.StripPrefix("/api/1.0", r)
}
