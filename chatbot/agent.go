package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Replies used when a turn can't be answered normally
const (
	ReplyUnavailable = "Service temporarily unavailable. Please try again."
	ReplyNetwork     = "Network error. Please try again."
	ReplyUseTool     = "Please use the appropriate tool for this request. I need to access the database to help you."
)

// clarifyingPhrases mark a free-text reply as a question back to the operator
var clarifyingPhrases = []string{
	"can you clarify",
	"what do you mean",
	"i need more information",
	"could you specify",
	"which book",
	"which customer",
	"how many",
	"please clarify",
}

// catalogKeywords mark a free-text reply as answering from catalog data
var catalogKeywords = []string{
	"clean code",
	"pragmatic programmer",
	"customer",
	"order",
	"stock",
	"inventory",
	"price",
	"author",
	"isbn",
}

// shouldHaveUsedTool reports whether content talks about catalog data without asking for clarification
func shouldHaveUsedTool(content string) bool {
	content = strings.ToLower(content)

	var catalog bool
	for _, k := range catalogKeywords {
		if strings.Contains(content, k) {
			catalog = true
			break
		}
	}
	if !catalog {
		return false
	}

	for _, p := range clarifyingPhrases {
		if strings.Contains(content, p) {
			return false
		}
	}

	return true
}

// Agent runs conversation turns against the model and the tool dispatcher
type Agent struct {
	client       ChatCompleter
	dispatcher   *Dispatcher
	audit        Auditor
	log          *slog.Logger
	historyLimit int
	timeout      time.Duration
}

// NewAgent creates a new Agent. Each model request sees at most historyLimit previous messages.
func NewAgent(client ChatCompleter, dispatcher *Dispatcher, audit Auditor, log *slog.Logger, historyLimit int, timeout time.Duration) *Agent {
	return &Agent{
		client:       client,
		dispatcher:   dispatcher,
		audit:        audit,
		log:          log,
		historyLimit: historyLimit,
		timeout:      timeout,
	}
}

// Run handles one turn of conv and returns the reply. conv is not modified; the caller
// stores the user and assistant messages.
func (a *Agent) Run(ctx context.Context, conv *Conversation, input string) string {
	a.audit.Message(ctx, conv.ID, RoleUser, input)

	reply := a.reply(ctx, conv, input)

	a.audit.Message(ctx, conv.ID, RoleAssistant, reply)

	return reply
}

func (a *Agent) reply(ctx context.Context, conv *Conversation, input string) string {
	messages := make([]Message, 0, a.historyLimit+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt()})
	messages = append(messages, conv.History(a.historyLimit)...)
	messages = append(messages, Message{Role: RoleUser, Content: input})

	chatCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		chatCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.Chat(chatCtx, messages, GetTools())
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			a.log.Error("model request rejected", "session", conv.ID, "status", apiErr.StatusCode, "body", apiErr.Body)
			return ReplyUnavailable
		}
		a.log.Error("model request failed", "session", conv.ID, "err", err)
		return ReplyNetwork
	}

	if len(resp.Choices) == 0 {
		a.log.Error("model returned no choices", "session", conv.ID)
		return ReplyNetwork
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		a.log.Info("executing tool calls", "session", conv.ID, "count", len(msg.ToolCalls))
		return a.dispatcher.ExecuteAll(ctx, conv.ID, msg.ToolCalls)
	}

	if shouldHaveUsedTool(msg.Content) {
		a.log.Warn("model answered without tools", "session", conv.ID)
		return ReplyUseTool
	}

	return msg.Content
}
