package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

type conversationRepository struct {
	mu       sync.RWMutex
	messages []*model.ChatMessage
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{}
}

func copyChatMessage(m *model.ChatMessage) *model.ChatMessage {
	copied := *m
	return &copied
}

func (r *conversationRepository) Append(ctx context.Context, msg *model.ChatMessage) error {
	if msg == nil {
		return goerr.Wrap(types.ErrInvalidInput, "chat message is nil")
	}
	if !msg.Role.IsValid() {
		return goerr.Wrap(types.ErrInvalidInput, "invalid message role",
			goerr.V("role", msg.Role),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, copyChatMessage(msg))
	return nil
}

func (r *conversationRepository) List(ctx context.Context) ([]*model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ChatMessage, len(r.messages))
	for i, m := range r.messages {
		result[i] = copyChatMessage(m)
	}
	return result, nil
}
