package model

import (
	"time"

	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// ChatMessage is one turn of the visible conversation. Messages are
// append-only: role and text never change after creation.
type ChatMessage struct {
	ID        types.MessageID
	Role      types.MessageRole
	Text      string
	ImagePath string // set for image-grounded user turns
	CreatedAt time.Time
}

// NewChatMessage creates a message with a fresh ID and the current time
func NewChatMessage(role types.MessageRole, text string) *ChatMessage {
	return &ChatMessage{
		ID:        types.NewMessageID(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
