package interfaces

import (
	"context"

	"github.com/glovebox-dev/glovebox/pkg/domain/model"
)

// InferenceEngine is the local completion service the orchestrator talks
// to. It is a shared, single-owner resource: at most one Complete call may
// be in flight at a time, which the orchestrator enforces.
type InferenceEngine interface {
	// Load performs the one-time engine initialization (model load). It
	// may take a long time and gates all turns.
	Load(ctx context.Context) error

	// Complete runs one completion over the full message sequence. The
	// response may contain plain text, tool-call requests, or both.
	Complete(ctx context.Context, req *model.CompletionRequest) (*model.Completion, error)
}
