package glovebox

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/glovebox-dev/glovebox/pkg/agent/tool"
	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// addLogEntryTool appends an entry to the service log on the user's behalf
type addLogEntryTool struct {
	knowledge interfaces.KnowledgeRepository
}

func (t *addLogEntryTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "glovebox__add_log_entry",
		Description: "Record an event in the user's service log. Use this when the user reports completed maintenance, an incident, or an observation worth keeping. The log is append-only.",
		Parameters: map[string]*gollem.Parameter{
			"text": {
				Type:        gollem.TypeString,
				Description: "The event to record, e.g. 'Replaced front brake pads'",
				Required:    true,
			},
			"category": {
				Type:        gollem.TypeString,
				Description: "One of: Maintenance, Incident, Note. Defaults to Note.",
				Required:    false,
			},
		},
	}
}

func (t *addLogEntryTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	text, _ := args["text"].(string)
	if text == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "text is required")
	}

	category := types.LogCategoryNote
	if raw, _ := args["category"].(string); raw != "" {
		parsed, err := types.ParseLogCategory(raw)
		if err != nil {
			return nil, goerr.Wrap(types.ErrInvalidInput, "invalid category",
				goerr.V("category", raw),
			)
		}
		category = parsed
	}

	tool.Update(ctx, fmt.Sprintf("Writing to service log: %s", text))

	entry, err := t.knowledge.AppendEntry(ctx, category, text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append log entry")
	}

	return map[string]any{
		"logged":   true,
		"entry_id": entry.ID.String(),
		"date":     entry.DateString(),
		"category": entry.Category.String(),
	}, nil
}
