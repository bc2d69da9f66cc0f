package chatbot

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// MaxHistory is how many prior turns are replayed to the model.
const MaxHistory = 10

// Message is one turn of client-held conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatInput struct {
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
}

type ChatReply struct {
	AIMessage string `json:"aiMessage"`
}

// StreamEvent is one Server-Sent Event frame.
type StreamEvent struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}
