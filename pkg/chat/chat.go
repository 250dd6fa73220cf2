// Package chat defines the role-tagged message types exchanged with LLM
// providers. The structure follows the chat-completion convention shared
// by Ollama and the hosted APIs.
package chat

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged message sent to or returned by an LLM.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the assistant text returned by a completion call.
type Response struct {
	Message string `json:"message"`
}
