package types

// TurnState is the orchestrator's position in the per-turn state machine
type TurnState string

const (
	TurnIdle          TurnState = "idle"
	TurnComposing     TurnState = "composing"
	TurnAwaitingModel TurnState = "awaiting_model"
	TurnToolDispatch  TurnState = "tool_dispatch"
	TurnResponding    TurnState = "responding"
)

// String returns the string representation of the turn state
func (s TurnState) String() string {
	return string(s)
}
