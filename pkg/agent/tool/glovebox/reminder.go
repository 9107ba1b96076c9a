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

// setReminderTool enqueues a reminder as a pending suggested action.
// The user reviews it in the action queue; nothing is scheduled until
// they accept.
type setReminderTool struct {
	actions interfaces.ActionRepository
}

func (t *setReminderTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "glovebox__set_reminder",
		Description: "Set a maintenance reminder for the user. Use this when the user asks to be reminded of something, or when the manual recommends a future action worth tracking. The reminder is queued for the user to accept or dismiss.",
		Parameters: map[string]*gollem.Parameter{
			"message": {
				Type:        gollem.TypeString,
				Description: "What to remind the user about, e.g. 'oil change'",
				Required:    true,
			},
			"date": {
				Type:        gollem.TypeString,
				Description: "Target date in YYYY-MM-DD format",
				Required:    false,
			},
		},
	}
}

func (t *setReminderTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	message, _ := args["message"].(string)
	if message == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "message is required")
	}
	date, _ := args["date"].(string)

	tool.Update(ctx, fmt.Sprintf("Setting reminder: %s", message))

	title := "Reminder"
	if date != "" {
		title = fmt.Sprintf("Reminder for %s", date)
	}

	action, err := t.actions.Enqueue(ctx, model.ActionCandidate{
		Title:       title,
		Description: message,
		Kind:        types.ActionKindReminder,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to enqueue reminder")
	}

	return map[string]any{
		"reminder_set": true,
		"action_id":    action.ID.String(),
		"title":        action.Title,
		"message":      action.Description,
	}, nil
}
