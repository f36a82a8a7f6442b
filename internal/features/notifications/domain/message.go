package domain

import "time"

// Event kinds relayed to connected consoles.
const (
	// KindChatMessage marks an operator chat message.
	KindChatMessage = "chat.message"
)

// ChatMessage is an operator chat message relayed to every connected console.
type ChatMessage struct {
	// Kind is always KindChatMessage.
	Kind string `json:"kind"`
	// From is the display name of the sender.
	From string `json:"from"`
	// Text is the message body.
	Text string `json:"text"`
	// At is when the gateway accepted the message.
	At time.Time `json:"at"`
}
