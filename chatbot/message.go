package chatbot

// Message represents a chat message in OpenAI format
type Message struct {
	Role      string     `json:"role"`                 // system, user, assistant
	Content   string     `json:"content"`              // text content
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // for assistant tool call requests
}

// ToolCall represents a tool call request from the assistant
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall contains the function name and arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
