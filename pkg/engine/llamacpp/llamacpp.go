// Package llamacpp adapts a llama.cpp server's OpenAI-compatible API to
// the InferenceEngine interface. The server owns the model file and the
// sampling backend; this package only speaks HTTP to it.
package llamacpp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
	"github.com/glovebox-dev/glovebox/pkg/utils/safe"
)

// Config holds the connection settings for a running llama.cpp server.
// Model-side parameters (context size, GPU layers, mlock) belong to the
// server process, not to this client.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint, e.g.
	// "http://127.0.0.1:8080/v1".
	BaseURL string

	// Model is the model name reported to the server. llama.cpp serves a
	// single model and accepts any name, but the field is forwarded as-is
	// so the same adapter works against multi-model gateways.
	Model string

	// APIKey is optional. Local servers ignore it.
	APIKey string

	// ProbeInterval is the delay between health probes during Load.
	// Zero means one second.
	ProbeInterval time.Duration
}

type Engine struct {
	cfg    Config
	client openai.Client
	httpc  *http.Client
}

var _ interfaces.InferenceEngine = (*Engine)(nil)

func New(cfg Config) *Engine {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.ProbeInterval == 0 {
		cfg.ProbeInterval = time.Second
	}

	return &Engine{
		cfg:    cfg,
		client: openai.NewClient(opts...),
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

// healthURL derives the server health endpoint from the completion base
// URL. llama.cpp exposes /health at the server root, outside the /v1
// prefix.
func (x *Engine) healthURL() string {
	return strings.TrimSuffix(strings.TrimSuffix(x.cfg.BaseURL, "/"), "/v1") + "/health"
}

// Load waits until the server reports a loaded model. llama.cpp returns
// 503 from /health while the model is still loading, so Load polls until
// it sees 200 or the context expires.
func (x *Engine) Load(ctx context.Context) error {
	ticker := time.NewTicker(x.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		ok, err := x.probe(ctx)
		if err == nil && ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return goerr.Wrap(types.ErrEngineNotReady, "engine did not become ready",
				goerr.V("url", x.healthURL()),
				goerr.V("cause", ctx.Err()),
			)
		case <-ticker.C:
		}
	}
}

func (x *Engine) probe(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.healthURL(), nil)
	if err != nil {
		return false, goerr.Wrap(err, "failed to build health request")
	}

	resp, err := x.httpc.Do(req)
	if err != nil {
		return false, err
	}
	defer safe.Close(ctx, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

// Complete runs one chat completion over the full message sequence.
func (x *Engine) Complete(ctx context.Context, req *model.CompletionRequest) (*model.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(x.cfg.Model),
		Messages: buildMessages(req),
	}

	if req.Options.ToolChoice != model.ToolChoiceNone && len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	if req.Options.Temperature > 0 {
		params.Temperature = openai.Float(req.Options.Temperature)
	}
	if req.Options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Options.MaxTokens))
	}
	if len(req.Options.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: req.Options.StopSequences,
		}
	}

	resp, err := x.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(types.ErrEngineFailure, "chat completion failed",
			goerr.V("cause", err),
		)
	}
	if len(resp.Choices) == 0 {
		return nil, goerr.Wrap(types.ErrEngineFailure, "completion returned no choices")
	}

	choice := resp.Choices[0]
	result := &model.Completion{
		Content: choice.Message.Content,
	}

	for _, tc := range choice.Message.ToolCalls {
		ftc := tc.AsFunction()
		args := map[string]any{}
		if ftc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(ftc.Function.Arguments), &args); err != nil {
				return nil, goerr.Wrap(types.ErrEngineFailure, "malformed tool call arguments",
					goerr.V(types.ToolNameKey, ftc.Function.Name),
					goerr.V("cause", err),
				)
			}
		}
		result.ToolCalls = append(result.ToolCalls, model.ToolCall{
			ID:        ftc.ID,
			Name:      ftc.Function.Name,
			Arguments: args,
		})
	}

	return result, nil
}

func buildTools(specs []gollem.ToolSpec) []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, len(specs))
	for i, spec := range specs {
		tools[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openai.String(spec.Description),
			Parameters:  openai.FunctionParameters(schemaFromSpec(spec)),
		})
	}
	return tools
}

// schemaFromSpec converts a tool spec into a JSON Schema object for the
// function-calling API.
func schemaFromSpec(spec gollem.ToolSpec) map[string]any {
	return schemaFromParameters(spec.Parameters)
}

func schemaFromParameters(params map[string]*gollem.Parameter) map[string]any {
	properties := map[string]any{}
	var required []string

	for name, p := range params {
		properties[name] = schemaFromParameter(p)
		if p.Required {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func schemaFromParameter(p *gollem.Parameter) map[string]any {
	prop := map[string]any{
		"type": string(p.Type),
	}
	if p.Description != "" {
		prop["description"] = p.Description
	}
	if len(p.Properties) > 0 {
		nested := schemaFromParameters(p.Properties)
		prop["properties"] = nested["properties"]
		if req, ok := nested["required"]; ok {
			prop["required"] = req
		}
	}
	return prop
}

func buildMessages(req *model.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case model.EngineRoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))

		case model.EngineRoleTool:
			msgs = append(msgs, openai.ToolMessage(m.Content, m.ToolCallID))

		case model.EngineRoleAssistant:
			if len(m.ToolCalls) == 0 {
				msgs = append(msgs, openai.AssistantMessage(m.Content))
				continue
			}

			toolCalls := make([]openai.ChatCompletionMessageToolCallUnionParam, len(m.ToolCalls))
			for j, tc := range m.ToolCalls {
				argsJSON, err := json.Marshal(tc.Arguments)
				if err != nil {
					argsJSON = []byte("{}")
				}
				toolCalls[j] = openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: string(argsJSON),
						},
					},
				}
			}
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: param.NewOpt(m.Content),
					},
					ToolCalls: toolCalls,
				},
			})
		}
	}

	return msgs
}
