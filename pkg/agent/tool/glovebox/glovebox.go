package glovebox

import (
	"github.com/m-mizutani/gollem"

	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
)

// New builds the built-in tools for the assistant. They mutate only local
// state: set_reminder and suggest_action enqueue reviewable suggested
// actions, add_log_entry appends to the service log.
func New(repo interfaces.Repository) []gollem.Tool {
	return []gollem.Tool{
		&setReminderTool{actions: repo.Action()},
		&addLogEntryTool{knowledge: repo.Knowledge()},
		&suggestActionTool{actions: repo.Action()},
	}
}
