package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

type knowledgeRepository struct {
	mu        sync.RWMutex
	reference string
	logs      []*model.LogEntry
}

func newKnowledgeRepository(reference string) *knowledgeRepository {
	return &knowledgeRepository{
		reference: reference,
	}
}

func copyLogEntry(e *model.LogEntry) *model.LogEntry {
	copied := *e
	return &copied
}

func (r *knowledgeRepository) seed(entries []*model.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		copied := copyLogEntry(e)
		if copied.ID == "" {
			copied.ID = types.NewLogEntryID()
		}
		if copied.Category == "" {
			copied.Category = types.LogCategoryNote
		}
		if copied.Date.IsZero() {
			copied.Date = time.Now().UTC().Truncate(24 * time.Hour)
		}
		r.logs = append(r.logs, copied)
	}
}

func (r *knowledgeRepository) AppendLog(ctx context.Context, text string) (*model.LogEntry, error) {
	return r.AppendEntry(ctx, types.LogCategoryNote, text)
}

func (r *knowledgeRepository) AppendEntry(ctx context.Context, category types.LogCategory, text string) (*model.LogEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "log entry text is empty")
	}
	if !category.IsValid() {
		return nil, goerr.Wrap(types.ErrInvalidInput, "invalid log category",
			goerr.V("category", category),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &model.LogEntry{
		ID:       types.NewLogEntryID(),
		Date:     time.Now().UTC().Truncate(24 * time.Hour),
		Category: category,
		Text:     text,
	}
	r.logs = append(r.logs, entry)

	return copyLogEntry(entry), nil
}

func (r *knowledgeRepository) Snapshot(ctx context.Context) (*model.KnowledgeSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]*model.LogEntry, len(r.logs))
	for i, e := range r.logs {
		logs[i] = copyLogEntry(e)
	}

	return &model.KnowledgeSnapshot{
		Reference: r.reference,
		Logs:      logs,
	}, nil
}
