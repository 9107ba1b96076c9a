package interfaces

import (
	"context"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// Repository aggregates the in-memory state owned by the assistant core
type Repository interface {
	Knowledge() KnowledgeRepository
	Conversation() ConversationRepository
	Action() ActionRepository
}

// KnowledgeRepository holds the static reference text and the append-only
// service log. No update or delete is exposed: the log is an audit trail.
type KnowledgeRepository interface {
	// AppendLog appends an entry with today's date and category Note.
	// Empty or whitespace-only text is rejected with ErrInvalidInput.
	AppendLog(ctx context.Context, text string) (*model.LogEntry, error)

	// AppendEntry appends an entry with an explicit category.
	AppendEntry(ctx context.Context, category types.LogCategory, text string) (*model.LogEntry, error)

	// Snapshot returns the reference text and a copy of the log sequence
	// in insertion order.
	Snapshot(ctx context.Context) (*model.KnowledgeSnapshot, error)
}

// ConversationRepository is the append-only chat transcript
type ConversationRepository interface {
	Append(ctx context.Context, msg *model.ChatMessage) error
	List(ctx context.Context) ([]*model.ChatMessage, error)
}

// ActionRepository is the queue of reviewable suggested actions.
// Enqueue is called exclusively by tool handlers.
type ActionRepository interface {
	Enqueue(ctx context.Context, candidate model.ActionCandidate) (*model.SuggestedAction, error)

	// Accept transitions pending→accepted. The ID stays stable.
	Accept(ctx context.Context, id types.ActionID) error

	// Reject removes the action entirely; rejecting an unknown ID is a
	// no-op.
	Reject(ctx context.Context, id types.ActionID) error

	// List returns pending and accepted actions in insertion order.
	List(ctx context.Context) ([]*model.SuggestedAction, error)
}
