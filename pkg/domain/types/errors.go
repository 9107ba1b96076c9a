package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the assistant core. All errors crossing a package
// boundary wrap one of these so callers can branch with errors.Is.
var (
	// ErrInvalidInput is returned for empty or whitespace-only submissions.
	// The surface treats it as a silent no-op, never as a visible message.
	ErrInvalidInput = goerr.New("invalid input")

	// ErrEngineNotReady is returned when a turn is submitted before the
	// inference engine has finished loading.
	ErrEngineNotReady = goerr.New("inference engine not ready")

	// ErrEngineFailure wraps completion-call failures. The orchestrator
	// recovers it into a terminal assistant message.
	ErrEngineFailure = goerr.New("inference engine failure")

	// ErrTurnInFlight is returned when a submission arrives while another
	// turn is still being processed.
	ErrTurnInFlight = goerr.New("another turn is in flight")

	// ErrUnknownTool is reported when the model requests a tool that is
	// not registered.
	ErrUnknownTool = goerr.New("unknown tool")

	// ErrMissingParameter is reported when a tool call omits a required
	// parameter. The parameter name is attached as a goerr value.
	ErrMissingParameter = goerr.New("missing required parameter")

	// ErrDuplicateToolName is a registration-time programmer error and is
	// fatal at startup.
	ErrDuplicateToolName = goerr.New("duplicate tool name")

	// ErrCaptureFailed is returned when image capture fails.
	ErrCaptureFailed = goerr.New("image capture failed")

	// ErrNotFound is returned by repositories for missing records.
	ErrNotFound = goerr.New("not found")
)

// Context keys for error values
const (
	ToolNameKey  = "tool_name"
	ParameterKey = "parameter"
	ActionIDKey  = "action_id"
)
