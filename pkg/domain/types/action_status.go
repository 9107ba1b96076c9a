package types

import "fmt"

// ActionStatus represents the review status of a suggested action.
// There is no "rejected" status: rejecting removes the record entirely.
type ActionStatus string

const (
	ActionStatusPending  ActionStatus = "pending"
	ActionStatusAccepted ActionStatus = "accepted"
)

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusPending, ActionStatusAccepted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}

// ActionKind tags which tool produced a suggested action
type ActionKind string

const (
	ActionKindReminder   ActionKind = "reminder"
	ActionKindSuggestion ActionKind = "suggestion"
)

// String returns the string representation of the action kind
func (k ActionKind) String() string {
	return string(k)
}
