package httpapi

import (
	"github.com/korylprince/library-desk-server/api"
	"github.com/korylprince/library-desk-server/chatbot"
)

//AuthenticateResponse is a successful authentication response including the session key and Operator
type AuthenticateResponse struct {
	SessionKey string        `json:"session_key"`
	Operator   *api.Operator `json:"operator"`
}

//BooksResponse contains a list of Books
type BooksResponse struct {
	Books []*api.Book `json:"books"`
}

//SessionsResponse contains a list of chat sessions, newest first
type SessionsResponse struct {
	Sessions []*chatbot.ConversationInfo `json:"sessions"`
}

//AuditResponse contains the audit log of a chat session
type AuditResponse struct {
	Messages  []*api.AuditMessage  `json:"messages"`
	ToolCalls []*api.AuditToolCall `json:"tool_calls"`
}
