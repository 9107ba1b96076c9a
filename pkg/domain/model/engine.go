package model

import "github.com/m-mizutani/gollem"

// Engine message roles
const (
	EngineRoleUser      = "user"
	EngineRoleAssistant = "assistant"
	EngineRoleTool      = "tool"
)

// ToolChoice is the tool-invocation policy handed to the engine
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide per turn whether to call zero,
	// one, or more tools.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone disables tool calling for the request.
	ToolChoiceNone ToolChoice = "none"
)

// ToolCall is a structured request from the model to execute a named tool
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult is the outcome of one tool call, serialized back to the model
// as a follow-up message. Failed calls carry Error instead of Data; they
// are reported, never retried.
type ToolResult struct {
	CallID string
	Name   string
	Data   map[string]any
	Error  string
}

// EngineMessage is one element of the completion request's message sequence
type EngineMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // assistant messages that requested tools
	ToolCallID string     // tool-result messages
}

// CompletionOptions tune a single completion call
type CompletionOptions struct {
	Temperature   float64
	MaxTokens     int
	ToolChoice    ToolChoice
	StopSequences []string
}

// CompletionRequest is the full input of one completion call
type CompletionRequest struct {
	SystemPrompt string
	Messages     []EngineMessage
	Tools        []gollem.ToolSpec
	Options      CompletionOptions
}

// Completion is the engine's response: plain text, tool-call requests,
// or both.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}
