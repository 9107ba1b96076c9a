package memory

import (
	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/model"
)

// Memory is the process-lifetime, in-memory repository. All state is lost
// at process exit by design.
type Memory struct {
	knowledge    *knowledgeRepository
	conversation *conversationRepository
	action       *actionRepository
}

var _ interfaces.Repository = &Memory{}

// Option configures the repository at construction time
type Option func(*Memory)

// WithSeedLogs pre-populates the service log. Seed entries keep their
// given date and category; missing IDs are assigned.
func WithSeedLogs(entries []*model.LogEntry) Option {
	return func(m *Memory) {
		m.knowledge.seed(entries)
	}
}

// New creates a repository holding the given read-only reference text
func New(reference string, opts ...Option) *Memory {
	m := &Memory{
		knowledge:    newKnowledgeRepository(reference),
		conversation: newConversationRepository(),
		action:       newActionRepository(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) Knowledge() interfaces.KnowledgeRepository {
	return m.knowledge
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}
