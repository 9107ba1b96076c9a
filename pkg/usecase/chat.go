package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/glovebox-dev/glovebox/pkg/agent/tool"
	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
	"github.com/glovebox-dev/glovebox/pkg/utils/async"
	"github.com/glovebox-dev/glovebox/pkg/utils/errutil"
	"github.com/glovebox-dev/glovebox/pkg/utils/logging"
)

// signalLostMessage is the terminal assistant line shown when the engine
// fails mid-turn. The turn still ends cleanly.
const signalLostMessage = "ERROR: SIGNAL LOST."

// ChatUseCase drives one conversation against a local inference engine:
// it composes the prompt from the knowledge store, runs the completion,
// dispatches any tool calls, and appends the final assistant message.
// At most one turn is in flight at a time.
type ChatUseCase struct {
	repo     interfaces.Repository
	engine   interfaces.InferenceEngine
	registry *tool.Registry
	observer interfaces.VisionObserver

	vehicle model.VehicleProfile
	persona string
	narrate bool
	toolsOn bool
	options model.CompletionOptions

	turnMu sync.Mutex
	ready  atomic.Bool

	stateMu sync.Mutex
	state   types.TurnState
}

type ChatOption func(*ChatUseCase)

// WithVehicle sets the vehicle profile rendered into the persona and the
// welcome message.
func WithVehicle(v model.VehicleProfile) ChatOption {
	return func(uc *ChatUseCase) {
		uc.vehicle = v
	}
}

// WithPersona overrides the persona line derived from the vehicle.
func WithPersona(persona string) ChatOption {
	return func(uc *ChatUseCase) {
		uc.persona = persona
	}
}

// WithNarrateToolResults controls whether tool results trigger a second
// model round-trip for a natural-language answer. When disabled the
// assistant message is a deterministic local summary of the dispatched
// tools.
func WithNarrateToolResults(narrate bool) ChatOption {
	return func(uc *ChatUseCase) {
		uc.narrate = narrate
	}
}

// WithToolsEnabled controls whether tool specs are offered to the model
// at all.
func WithToolsEnabled(enabled bool) ChatOption {
	return func(uc *ChatUseCase) {
		uc.toolsOn = enabled
	}
}

// WithCompletionOptions sets the sampling options used for every turn.
func WithCompletionOptions(opts model.CompletionOptions) ChatOption {
	return func(uc *ChatUseCase) {
		uc.options = opts
	}
}

func NewChat(repo interfaces.Repository, engine interfaces.InferenceEngine, registry *tool.Registry, observer interfaces.VisionObserver, opts ...ChatOption) *ChatUseCase {
	uc := &ChatUseCase{
		repo:     repo,
		engine:   engine,
		registry: registry,
		observer: observer,
		narrate:  true,
		toolsOn:  true,
		state:    types.TurnIdle,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.persona == "" {
		uc.persona = DefaultPersona(uc.vehicle)
	}
	return uc
}

// Start kicks off the engine load in the background. Turns submitted
// before the load finishes fail with ErrEngineNotReady. onReady, when
// non-nil, runs once after a successful load.
func (uc *ChatUseCase) Start(ctx context.Context, onReady func(ctx context.Context)) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := uc.engine.Load(ctx); err != nil {
			return goerr.Wrap(err, "engine load failed")
		}
		uc.ready.Store(true)
		logging.From(ctx).Info("inference engine ready")
		if onReady != nil {
			onReady(ctx)
		}
		return nil
	})
}

// Ready reports whether the engine has finished loading.
func (uc *ChatUseCase) Ready() bool {
	return uc.ready.Load()
}

// State returns the orchestrator's current position in the turn state
// machine.
func (uc *ChatUseCase) State() types.TurnState {
	uc.stateMu.Lock()
	defer uc.stateMu.Unlock()
	return uc.state
}

func (uc *ChatUseCase) setState(s types.TurnState) {
	uc.stateMu.Lock()
	defer uc.stateMu.Unlock()
	uc.state = s
}

// Welcome appends the post-setup assistant greeting to the conversation.
func (uc *ChatUseCase) Welcome(ctx context.Context) error {
	text := "SYSTEM READY.\nOFFLINE KNOWLEDGE: LOADED."
	if name := uc.vehicle.DisplayName(); name != "" {
		text = fmt.Sprintf("SYSTEM READY.\nVEHICLE TWIN ESTABLISHED: %s.\nOFFLINE KNOWLEDGE: LOADED.", name)
	}
	return uc.repo.Conversation().Append(ctx, model.NewChatMessage(types.RoleAssistant, text))
}

// SubmitUserMessage runs one full text turn: user message appended,
// prompt composed from a fresh snapshot, completion, optional tool
// dispatch, final assistant message appended. Rejects empty input, an
// unloaded engine, and concurrent turns, all without touching the
// conversation.
func (uc *ChatUseCase) SubmitUserMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return goerr.Wrap(types.ErrInvalidInput, "empty user message")
	}
	if !uc.ready.Load() {
		return goerr.Wrap(types.ErrEngineNotReady, "model is still loading")
	}
	if !uc.turnMu.TryLock() {
		return goerr.Wrap(types.ErrTurnInFlight, "a turn is already being processed")
	}
	defer uc.turnMu.Unlock()
	defer uc.setState(types.TurnIdle)

	if err := uc.repo.Conversation().Append(ctx, model.NewChatMessage(types.RoleUser, text)); err != nil {
		return goerr.Wrap(err, "failed to append user message")
	}

	uc.setState(types.TurnComposing)
	snapshot, err := uc.repo.Knowledge().Snapshot(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to snapshot knowledge store")
	}
	prompt := ComposePrompt(snapshot, text, uc.persona)

	messages := []model.EngineMessage{
		{Role: model.EngineRoleUser, Content: prompt},
	}

	req := &model.CompletionRequest{
		Messages: messages,
		Options:  uc.options,
	}
	req.Options.ToolChoice = model.ToolChoiceNone
	if uc.toolsOn && uc.registry.Len() > 0 {
		req.Tools = uc.registry.Specs()
		req.Options.ToolChoice = model.ToolChoiceAuto
	}

	uc.setState(types.TurnAwaitingModel)
	resp, err := uc.engine.Complete(ctx, req)
	if err != nil {
		return uc.concludeWithFailure(ctx, err)
	}

	final := resp.Content
	if len(resp.ToolCalls) > 0 {
		final, err = uc.dispatchTools(ctx, messages, resp)
		if err != nil {
			return uc.concludeWithFailure(ctx, err)
		}
	}

	uc.setState(types.TurnResponding)
	if err := uc.repo.Conversation().Append(ctx, model.NewChatMessage(types.RoleAssistant, final)); err != nil {
		return goerr.Wrap(err, "failed to append assistant message")
	}
	return nil
}

// dispatchTools executes every requested tool call, then produces the
// final answer text: either a second model round-trip over the results or
// a local summary, per the narration policy. The complete result set is
// always collected before anything goes back to the model.
func (uc *ChatUseCase) dispatchTools(ctx context.Context, messages []model.EngineMessage, resp *model.Completion) (string, error) {
	uc.setState(types.TurnToolDispatch)

	results := make([]model.ToolResult, len(resp.ToolCalls))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, call := range resp.ToolCalls {
		eg.Go(func() error {
			result := model.ToolResult{CallID: call.ID, Name: call.Name}
			data, err := uc.registry.Invoke(egCtx, call.Name, call.Arguments)
			if err != nil {
				// A failed call is reported to the model, never retried.
				errutil.Handle(egCtx, err, "tool call failed")
				result.Error = err.Error()
			} else {
				result.Data = data
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", goerr.Wrap(err, "tool dispatch failed")
	}

	if !uc.narrate {
		return summarizeToolResults(resp.Content, results), nil
	}

	messages = append(messages, model.EngineMessage{
		Role:      model.EngineRoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	for _, result := range results {
		messages = append(messages, model.EngineMessage{
			Role:       model.EngineRoleTool,
			ToolCallID: result.CallID,
			Content:    encodeToolResult(result),
		})
	}

	// Narration runs tool-free so a chatty model cannot loop.
	narrateReq := &model.CompletionRequest{
		Messages: messages,
		Options:  uc.options,
	}
	narrateReq.Options.ToolChoice = model.ToolChoiceNone

	uc.setState(types.TurnAwaitingModel)
	narrated, err := uc.engine.Complete(ctx, narrateReq)
	if err != nil {
		return "", err
	}
	return narrated.Content, nil
}

// concludeWithFailure ends a turn whose completion failed: the error is
// logged and the conversation gets the fixed failure line instead of an
// answer.
func (uc *ChatUseCase) concludeWithFailure(ctx context.Context, cause error) error {
	errutil.Handle(ctx, cause, "completion failed")

	uc.setState(types.TurnResponding)
	msg := model.NewChatMessage(types.RoleAssistant, signalLostMessage)
	if err := uc.repo.Conversation().Append(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to append failure message")
	}
	return nil
}

// encodeToolResult serializes one result for the model. Failures travel
// as {"error": ...} so the model can acknowledge them.
func encodeToolResult(result model.ToolResult) string {
	payload := result.Data
	if result.Error != "" {
		payload = map[string]any{"error": result.Error}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"unencodable tool result"}`
	}
	return string(encoded)
}

// summarizeToolResults renders the no-narration fallback answer.
func summarizeToolResults(content string, results []model.ToolResult) string {
	lines := []string{}
	if strings.TrimSpace(content) != "" {
		lines = append(lines, content)
	}
	for _, result := range results {
		if result.Error != "" {
			lines = append(lines, fmt.Sprintf(">> TOOL %s: FAILED", result.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf(">> TOOL %s: OK", result.Name))
	}
	return strings.Join(lines, "\n")
}

// SubmitImage runs one image-grounded turn. The image itself never
// reaches the text-only model: the observer's description stands in for
// it, and tools stay disabled.
func (uc *ChatUseCase) SubmitImage(ctx context.Context, imagePath string) error {
	if !uc.ready.Load() {
		return goerr.Wrap(types.ErrEngineNotReady, "model is still loading")
	}
	if !uc.turnMu.TryLock() {
		return goerr.Wrap(types.ErrTurnInFlight, "a turn is already being processed")
	}
	defer uc.turnMu.Unlock()
	defer uc.setState(types.TurnIdle)

	userMsg := model.NewChatMessage(types.RoleUser, "IMAGE_CAPTURED.JPG")
	userMsg.ImagePath = imagePath
	if err := uc.repo.Conversation().Append(ctx, userMsg); err != nil {
		return goerr.Wrap(err, "failed to append image message")
	}

	uc.setState(types.TurnComposing)
	observation, err := uc.observer.Describe(ctx, imagePath)
	if err != nil {
		return uc.concludeWithFailure(ctx, goerr.Wrap(err, "image observation failed"))
	}

	snapshot, err := uc.repo.Knowledge().Snapshot(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to snapshot knowledge store")
	}
	prompt := ComposeVisionPrompt(snapshot, observation, uc.persona)

	req := &model.CompletionRequest{
		Messages: []model.EngineMessage{
			{Role: model.EngineRoleUser, Content: prompt},
		},
		Options: uc.options,
	}
	req.Options.ToolChoice = model.ToolChoiceNone

	uc.setState(types.TurnAwaitingModel)
	resp, err := uc.engine.Complete(ctx, req)
	if err != nil {
		return uc.concludeWithFailure(ctx, err)
	}

	uc.setState(types.TurnResponding)
	if err := uc.repo.Conversation().Append(ctx, model.NewChatMessage(types.RoleAssistant, resp.Content)); err != nil {
		return goerr.Wrap(err, "failed to append assistant message")
	}
	return nil
}

// AppendLogEntry writes directly to the service log and confirms in the
// conversation without consulting the model.
func (uc *ChatUseCase) AppendLogEntry(ctx context.Context, text string) (*model.LogEntry, error) {
	entry, err := uc.repo.Knowledge().AppendLog(ctx, text)
	if err != nil {
		return nil, err
	}

	confirmation := fmt.Sprintf(">> WRITE_TO_MEMORY: SUCCESS\n>> ENTRY: %q", entry.Text)
	if err := uc.repo.Conversation().Append(ctx, model.NewChatMessage(types.RoleAssistant, confirmation)); err != nil {
		return nil, goerr.Wrap(err, "failed to append confirmation message")
	}
	return entry, nil
}

// Conversation returns the transcript in insertion order.
func (uc *ChatUseCase) Conversation(ctx context.Context) ([]*model.ChatMessage, error) {
	return uc.repo.Conversation().List(ctx)
}

// Actions returns pending and accepted suggested actions in insertion
// order.
func (uc *ChatUseCase) Actions(ctx context.Context) ([]*model.SuggestedAction, error) {
	return uc.repo.Action().List(ctx)
}

// AcceptAction transitions a pending action to accepted. The ID stays
// stable across the transition.
func (uc *ChatUseCase) AcceptAction(ctx context.Context, id types.ActionID) error {
	return uc.repo.Action().Accept(ctx, id)
}

// RejectAction removes an action from the queue. Unknown IDs are a
// no-op.
func (uc *ChatUseCase) RejectAction(ctx context.Context, id types.ActionID) error {
	return uc.repo.Action().Reject(ctx, id)
}
