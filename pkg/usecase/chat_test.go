package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/glovebox-dev/glovebox/pkg/agent/tool"
	"github.com/glovebox-dev/glovebox/pkg/agent/tool/glovebox"
	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
	"github.com/glovebox-dev/glovebox/pkg/repository/memory"
	"github.com/glovebox-dev/glovebox/pkg/service/vision"
	"github.com/glovebox-dev/glovebox/pkg/usecase"
)

type mockEngine struct {
	loadFunc     func(ctx context.Context) error
	completeFunc func(ctx context.Context, req *model.CompletionRequest) (*model.Completion, error)
	requests     []*model.CompletionRequest
}

var _ interfaces.InferenceEngine = (*mockEngine)(nil)

func (x *mockEngine) Load(ctx context.Context) error {
	if x.loadFunc != nil {
		return x.loadFunc(ctx)
	}
	return nil
}

func (x *mockEngine) Complete(ctx context.Context, req *model.CompletionRequest) (*model.Completion, error) {
	x.requests = append(x.requests, req)
	return x.completeFunc(ctx, req)
}

func startChat(t *testing.T, uc *usecase.ChatUseCase) {
	t.Helper()
	uc.Start(context.Background(), nil)
	deadline := time.Now().Add(5 * time.Second)
	for !uc.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("engine never became ready")
		}
		time.Sleep(time.Millisecond)
	}
}

func newRegistry(repo interfaces.Repository) *tool.Registry {
	registry := tool.NewRegistry()
	registry.MustRegister(glovebox.New(repo)...)
	return registry
}

func TestSubmitUserMessage(t *testing.T) {
	t.Run("rejects turns before the engine is ready", func(t *testing.T) {
		repo := memory.New("manual")
		engine := &mockEngine{}
		uc := usecase.NewChat(repo, engine, tool.NewRegistry(), vision.NewScenarioObserver())

		err := uc.SubmitUserMessage(context.Background(), "hello")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrEngineNotReady)).True()

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})

	t.Run("rejects empty input without conversation effect", func(t *testing.T) {
		repo := memory.New("manual")
		engine := &mockEngine{}
		uc := usecase.NewChat(repo, engine, tool.NewRegistry(), vision.NewScenarioObserver())
		startChat(t, uc)

		err := uc.SubmitUserMessage(context.Background(), "   \n  ")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrInvalidInput)).True()

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})

	t.Run("grounded answer flows end to end", func(t *testing.T) {
		repo := memory.New(
			"DPF Warning: Drive at 40mph+ for 20 minutes to regenerate.",
			memory.WithSeedLogs([]*model.LogEntry{
				{Date: day("2025-11-25"), Text: "Replaced battery"},
			}),
		)
		engine := &mockEngine{
			completeFunc: func(_ context.Context, req *model.CompletionRequest) (*model.Completion, error) {
				prompt := req.Messages[0].Content
				gt.B(t, strings.Contains(prompt, "Drive at 40mph+ for 20 minutes")).True()
				gt.B(t, strings.Contains(prompt, "Replaced battery")).True()
				gt.B(t, strings.Contains(prompt, "my oil light is on")).True()
				return &model.Completion{Content: "Stop the car immediately."}, nil
			},
		}
		uc := usecase.NewChat(repo, engine, newRegistry(repo), vision.NewScenarioObserver())
		startChat(t, uc)

		gt.NoError(t, uc.SubmitUserMessage(context.Background(), "my oil light is on")).Required()

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2).Required()
		gt.Value(t, msgs[0].Role).Equal(types.RoleUser)
		gt.Value(t, msgs[0].Text).Equal("my oil light is on")
		gt.Value(t, msgs[1].Role).Equal(types.RoleAssistant)
		gt.Value(t, msgs[1].Text).Equal("Stop the car immediately.")
		gt.Value(t, uc.State()).Equal(types.TurnIdle)
	})

	t.Run("a second turn is rejected while one is in flight", func(t *testing.T) {
		repo := memory.New("manual")
		entered := make(chan struct{})
		release := make(chan struct{})
		engine := &mockEngine{
			completeFunc: func(_ context.Context, _ *model.CompletionRequest) (*model.Completion, error) {
				close(entered)
				<-release
				return &model.Completion{Content: "done"}, nil
			},
		}
		uc := usecase.NewChat(repo, engine, tool.NewRegistry(), vision.NewScenarioObserver())
		startChat(t, uc)

		first := make(chan error, 1)
		go func() {
			first <- uc.SubmitUserMessage(context.Background(), "first question")
		}()
		<-entered

		err := uc.SubmitUserMessage(context.Background(), "second question")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrTurnInFlight)).True()

		close(release)
		gt.NoError(t, <-first)

		// The rejected submission left no trace.
		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2)
	})

	t.Run("engine failure ends the turn with the failure line", func(t *testing.T) {
		repo := memory.New("manual")
		engine := &mockEngine{
			completeFunc: func(_ context.Context, _ *model.CompletionRequest) (*model.Completion, error) {
				return nil, errors.New("llama server crashed")
			},
		}
		uc := usecase.NewChat(repo, engine, tool.NewRegistry(), vision.NewScenarioObserver())
		startChat(t, uc)

		gt.NoError(t, uc.SubmitUserMessage(context.Background(), "hello")).Required()

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2).Required()
		gt.Value(t, msgs[1].Text).Equal("ERROR: SIGNAL LOST.")
		gt.Value(t, uc.State()).Equal(types.TurnIdle)
	})
}

func TestToolRoundTrip(t *testing.T) {
	reminderCall := model.ToolCall{
		ID:   "call_1",
		Name: "glovebox__set_reminder",
		Arguments: map[string]any{
			"date":    "2025-12-01",
			"message": "oil change",
		},
	}

	t.Run("narrated: results go back for a final answer", func(t *testing.T) {
		repo := memory.New("manual")
		engine := &mockEngine{}
		engine.completeFunc = func(_ context.Context, req *model.CompletionRequest) (*model.Completion, error) {
			if len(engine.requests) == 1 {
				gt.Array(t, req.Tools).Length(3)
				gt.Value(t, req.Options.ToolChoice).Equal(model.ToolChoiceAuto)
				return &model.Completion{ToolCalls: []model.ToolCall{reminderCall}}, nil
			}

			// Second round-trip carries the complete result set and no tools.
			gt.Value(t, req.Options.ToolChoice).Equal(model.ToolChoiceNone)
			last := req.Messages[len(req.Messages)-1]
			gt.Value(t, last.Role).Equal(model.EngineRoleTool)
			gt.Value(t, last.ToolCallID).Equal("call_1")
			gt.B(t, strings.Contains(last.Content, `"reminder_set":true`)).True()
			return &model.Completion{Content: "Reminder saved for your oil change."}, nil
		}

		uc := usecase.NewChat(repo, engine, newRegistry(repo), vision.NewScenarioObserver(),
			usecase.WithNarrateToolResults(true),
		)
		startChat(t, uc)

		gt.NoError(t, uc.SubmitUserMessage(context.Background(), "remind me about the oil change on Dec 1")).Required()
		gt.Number(t, len(engine.requests)).Equal(2)

		actions, err := uc.Actions(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1).Required()
		gt.Value(t, actions[0].Status).Equal(types.ActionStatusPending)
		gt.Value(t, actions[0].Description).Equal("oil change")

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Value(t, msgs[len(msgs)-1].Text).Equal("Reminder saved for your oil change.")
	})

	t.Run("unnarrated: one model call and a local summary", func(t *testing.T) {
		repo := memory.New("manual")
		engine := &mockEngine{
			completeFunc: func(_ context.Context, _ *model.CompletionRequest) (*model.Completion, error) {
				return &model.Completion{ToolCalls: []model.ToolCall{reminderCall}}, nil
			},
		}
		uc := usecase.NewChat(repo, engine, newRegistry(repo), vision.NewScenarioObserver(),
			usecase.WithNarrateToolResults(false),
		)
		startChat(t, uc)

		gt.NoError(t, uc.SubmitUserMessage(context.Background(), "remind me")).Required()
		gt.Number(t, len(engine.requests)).Equal(1)

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.B(t, strings.Contains(msgs[len(msgs)-1].Text, ">> TOOL glovebox__set_reminder: OK")).True()

		actions, err := uc.Actions(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1)
	})

	t.Run("a failing tool is reported, not fatal", func(t *testing.T) {
		repo := memory.New("manual")
		badCall := model.ToolCall{ID: "call_9", Name: "glovebox__set_reminder", Arguments: map[string]any{}}
		engine := &mockEngine{}
		engine.completeFunc = func(_ context.Context, req *model.CompletionRequest) (*model.Completion, error) {
			if len(engine.requests) == 1 {
				return &model.Completion{ToolCalls: []model.ToolCall{badCall}}, nil
			}
			last := req.Messages[len(req.Messages)-1]
			gt.B(t, strings.Contains(last.Content, "error")).True()
			return &model.Completion{Content: "I could not set that reminder."}, nil
		}

		uc := usecase.NewChat(repo, engine, newRegistry(repo), vision.NewScenarioObserver())
		startChat(t, uc)

		gt.NoError(t, uc.SubmitUserMessage(context.Background(), "remind me")).Required()

		actions, err := uc.Actions(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(0)

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Value(t, msgs[len(msgs)-1].Text).Equal("I could not set that reminder.")
	})

	t.Run("tools disabled: no specs offered", func(t *testing.T) {
		repo := memory.New("manual")
		engine := &mockEngine{
			completeFunc: func(_ context.Context, req *model.CompletionRequest) (*model.Completion, error) {
				gt.Array(t, req.Tools).Length(0)
				gt.Value(t, req.Options.ToolChoice).Equal(model.ToolChoiceNone)
				return &model.Completion{Content: "ok"}, nil
			},
		}
		uc := usecase.NewChat(repo, engine, newRegistry(repo), vision.NewScenarioObserver(),
			usecase.WithToolsEnabled(false),
		)
		startChat(t, uc)
		gt.NoError(t, uc.SubmitUserMessage(context.Background(), "hi"))
	})
}

func TestSubmitImage(t *testing.T) {
	t.Run("observer hint stands in for the image", func(t *testing.T) {
		repo := memory.New("DPF Warning: Drive at 40mph+ for 20 minutes to regenerate.")
		engine := &mockEngine{
			completeFunc: func(_ context.Context, req *model.CompletionRequest) (*model.Completion, error) {
				prompt := req.Messages[0].Content
				gt.B(t, strings.Contains(prompt, "Yellow Rectangular Box with Dots (DPF Light)")).True()
				gt.Array(t, req.Tools).Length(0)
				return &model.Completion{Content: "That is the DPF warning. Drive at 40mph+ for 20 minutes."}, nil
			},
		}
		uc := usecase.NewChat(repo, engine, newRegistry(repo), vision.NewScenarioObserver())
		startChat(t, uc)

		gt.NoError(t, uc.SubmitImage(context.Background(), "/tmp/dash.jpg")).Required()

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2).Required()
		gt.Value(t, msgs[0].Role).Equal(types.RoleUser)
		gt.Value(t, msgs[0].ImagePath).Equal("/tmp/dash.jpg")
		gt.Value(t, msgs[1].Text).Equal("That is the DPF warning. Drive at 40mph+ for 20 minutes.")
	})
}

func TestAppendLogEntry(t *testing.T) {
	t.Run("writes the log and confirms in the conversation", func(t *testing.T) {
		repo := memory.New("manual")
		uc := usecase.NewChat(repo, &mockEngine{}, tool.NewRegistry(), vision.NewScenarioObserver())

		ctx := context.Background()
		entry, err := uc.AppendLogEntry(ctx, "Topped up washer fluid")
		gt.NoError(t, err).Required()
		gt.Value(t, entry.Text).Equal("Topped up washer fluid")

		snap, err := repo.Knowledge().Snapshot(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, snap.Logs).Length(1)

		msgs, err := uc.Conversation(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1).Required()
		gt.B(t, strings.Contains(msgs[0].Text, ">> WRITE_TO_MEMORY: SUCCESS")).True()
		gt.B(t, strings.Contains(msgs[0].Text, `"Topped up washer fluid"`)).True()
	})

	t.Run("blank text is rejected with no messages", func(t *testing.T) {
		repo := memory.New("manual")
		uc := usecase.NewChat(repo, &mockEngine{}, tool.NewRegistry(), vision.NewScenarioObserver())

		_, err := uc.AppendLogEntry(context.Background(), "  ")
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrInvalidInput)).True()

		msgs, err := uc.Conversation(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})
}

func TestActionReview(t *testing.T) {
	t.Run("accept keeps the ID stable", func(t *testing.T) {
		repo := memory.New("manual")
		uc := usecase.NewChat(repo, &mockEngine{}, tool.NewRegistry(), vision.NewScenarioObserver())
		ctx := context.Background()

		queued, err := repo.Action().Enqueue(ctx, model.ActionCandidate{
			Title:       "Reminder",
			Description: "oil change",
			Kind:        types.ActionKindReminder,
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.AcceptAction(ctx, queued.ID)).Required()

		actions, err := uc.Actions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1).Required()
		gt.Value(t, actions[0].ID).Equal(queued.ID)
		gt.Value(t, actions[0].Status).Equal(types.ActionStatusAccepted)
	})

	t.Run("reject removes the action", func(t *testing.T) {
		repo := memory.New("manual")
		uc := usecase.NewChat(repo, &mockEngine{}, tool.NewRegistry(), vision.NewScenarioObserver())
		ctx := context.Background()

		queued, err := repo.Action().Enqueue(ctx, model.ActionCandidate{
			Title: "Suggestion", Description: "x", Kind: types.ActionKindSuggestion,
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.RejectAction(ctx, queued.ID)).Required()

		actions, err := uc.Actions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(0)
	})
}
