package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// actionRepository keeps actions in a map for lookup plus an order slice
// so List preserves insertion order.
type actionRepository struct {
	mu      sync.RWMutex
	actions map[types.ActionID]*model.SuggestedAction
	order   []types.ActionID
}

func newActionRepository() *actionRepository {
	return &actionRepository{
		actions: make(map[types.ActionID]*model.SuggestedAction),
	}
}

func copyAction(a *model.SuggestedAction) *model.SuggestedAction {
	copied := *a
	return &copied
}

func (r *actionRepository) Enqueue(ctx context.Context, candidate model.ActionCandidate) (*model.SuggestedAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	action := &model.SuggestedAction{
		ID:          types.NewActionID(),
		Title:       candidate.Title,
		Description: candidate.Description,
		Kind:        candidate.Kind,
		Status:      types.ActionStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	r.actions[action.ID] = action
	r.order = append(r.order, action.ID)

	return copyAction(action), nil
}

func (r *actionRepository) Accept(ctx context.Context, id types.ActionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	action, exists := r.actions[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "action not found",
			goerr.V(types.ActionIDKey, id),
		)
	}

	action.Status = types.ActionStatusAccepted
	return nil
}

func (r *actionRepository) Reject(ctx context.Context, id types.ActionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[id]; !exists {
		// Rejecting an unknown action is a no-op.
		return nil
	}

	delete(r.actions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *actionRepository) List(ctx context.Context) ([]*model.SuggestedAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SuggestedAction, 0, len(r.order))
	for _, id := range r.order {
		if a, exists := r.actions[id]; exists {
			result = append(result, copyAction(a))
		}
	}
	return result, nil
}
