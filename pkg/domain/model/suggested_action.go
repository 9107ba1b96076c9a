package model

import (
	"time"

	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// SuggestedAction is a UI-facing, reviewable record produced as a side
// effect of a tool call. It is owned by the action queue: tools enqueue it,
// the user accepts or rejects it, nothing else mutates it.
//
// The ID is stable across the pending→accepted transition.
type SuggestedAction struct {
	ID          types.ActionID
	Title       string
	Description string
	Kind        types.ActionKind
	Status      types.ActionStatus
	CreatedAt   time.Time
}

// ActionCandidate is what a tool hands to the queue; identity and status
// are assigned by the queue itself.
type ActionCandidate struct {
	Title       string
	Description string
	Kind        types.ActionKind
}
