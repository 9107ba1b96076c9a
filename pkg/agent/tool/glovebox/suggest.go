package glovebox

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/glovebox-dev/glovebox/pkg/agent/tool"
	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// suggestActionTool enqueues a generic suggestion, e.g. "book a garage
// visit", for the user to review.
type suggestActionTool struct {
	actions interfaces.ActionRepository
}

func (t *suggestActionTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "glovebox__suggest_action",
		Description: "Suggest a follow-up action to the user, such as booking a garage visit or ordering a part. The suggestion appears in the user's action queue for review; it has no effect until accepted.",
		Parameters: map[string]*gollem.Parameter{
			"title": {
				Type:        gollem.TypeString,
				Description: "Short title of the suggestion",
				Required:    true,
			},
			"description": {
				Type:        gollem.TypeString,
				Description: "What the user should do and why",
				Required:    true,
			},
		},
	}
}

func (t *suggestActionTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	title, _ := args["title"].(string)
	description, _ := args["description"].(string)
	if title == "" || description == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "title and description are required")
	}

	tool.Update(ctx, fmt.Sprintf("Suggesting: %s", title))

	action, err := t.actions.Enqueue(ctx, model.ActionCandidate{
		Title:       title,
		Description: description,
		Kind:        types.ActionKindSuggestion,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to enqueue suggestion")
	}

	return map[string]any{
		"suggested": true,
		"action_id": action.ID.String(),
	}, nil
}
