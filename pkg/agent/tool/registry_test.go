package tool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/glovebox-dev/glovebox/pkg/agent/tool"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

type stubTool struct {
	spec  gollem.ToolSpec
	runFn func(ctx context.Context, args map[string]any) (map[string]any, error)
}

func (t *stubTool) Spec() gollem.ToolSpec {
	return t.spec
}

func (t *stubTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	if t.runFn != nil {
		return t.runFn(ctx, args)
	}
	return map[string]any{"ok": true}, nil
}

func newStubTool(name string, required ...string) *stubTool {
	params := map[string]*gollem.Parameter{}
	for _, p := range required {
		params[p] = &gollem.Parameter{
			Type:        gollem.TypeString,
			Description: "test parameter",
			Required:    true,
		}
	}
	return &stubTool{
		spec: gollem.ToolSpec{
			Name:        name,
			Description: "a test tool",
			Parameters:  params,
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Run("duplicate name fails", func(t *testing.T) {
		r := tool.NewRegistry()
		gt.NoError(t, r.Register(newStubTool("set_reminder"))).Required()

		err := r.Register(newStubTool("set_reminder"))
		gt.Value(t, errors.Is(err, types.ErrDuplicateToolName)).Equal(true)
	})

	t.Run("specs preserve registration order and content", func(t *testing.T) {
		r := tool.NewRegistry()
		gt.NoError(t, r.Register(newStubTool("b_tool"))).Required()
		gt.NoError(t, r.Register(newStubTool("a_tool"))).Required()

		first := r.Specs()
		gt.Array(t, first).Length(2).Required()
		gt.Value(t, first[0].Name).Equal("b_tool")
		gt.Value(t, first[1].Name).Equal("a_tool")

		second := r.Specs()
		gt.Value(t, second[0].Name).Equal(first[0].Name)
		gt.Value(t, second[1].Name).Equal(first[1].Name)
		gt.Value(t, second[0].Description).Equal(first[0].Description)
	})
}

func TestRegistry_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown tool", func(t *testing.T) {
		r := tool.NewRegistry()
		_, err := r.Invoke(ctx, "missing_tool", nil)
		gt.Value(t, errors.Is(err, types.ErrUnknownTool)).Equal(true)
	})

	t.Run("missing required parameter names the parameter", func(t *testing.T) {
		r := tool.NewRegistry()
		gt.NoError(t, r.Register(newStubTool("set_reminder", "message"))).Required()

		_, err := r.Invoke(ctx, "set_reminder", map[string]any{"date": "2025-12-01"})
		gt.Value(t, errors.Is(err, types.ErrMissingParameter)).Equal(true)

		var ge *goerr.Error
		gt.Value(t, errors.As(err, &ge)).Equal(true)
		gt.Value(t, ge.Values()[types.ParameterKey]).Equal("message")
	})

	t.Run("invokes handler with args", func(t *testing.T) {
		r := tool.NewRegistry()
		st := newStubTool("set_reminder", "message")
		var gotArgs map[string]any
		st.runFn = func(ctx context.Context, args map[string]any) (map[string]any, error) {
			gotArgs = args
			return map[string]any{"reminder_set": true}, nil
		}
		gt.NoError(t, r.Register(st)).Required()

		result, err := r.Invoke(ctx, "set_reminder", map[string]any{"message": "oil change"})
		gt.NoError(t, err).Required()
		gt.Value(t, result["reminder_set"]).Equal(true)
		gt.Value(t, gotArgs["message"]).Equal("oil change")
	})

	t.Run("handler error is wrapped, not panicked", func(t *testing.T) {
		r := tool.NewRegistry()
		st := newStubTool("broken_tool")
		st.runFn = func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, errors.New("boom")
		}
		gt.NoError(t, r.Register(st)).Required()

		_, err := r.Invoke(ctx, "broken_tool", nil)
		gt.Error(t, err)
	})
}
