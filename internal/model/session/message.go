package session

import "time"

// Message type discriminators for chat history entries.
const (
	MessageChat       = "chat"
	MessagePrompt     = "prompt"
	MessageReflection = "reflection"
)

// ChatMessage is a single turn in a session conversation. Immutable once
// persisted; never deleted by this service.
type ChatMessage struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	SenderID    string    `json:"senderId"`
	SenderRole  Role      `json:"senderRole"`
	MessageType string    `json:"messageType"`
	Content     string    `json:"content"`
	ReadBy      []string  `json:"readBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
