package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/glovebox-dev/glovebox/pkg/engine/llamacpp"
	"github.com/glovebox-dev/glovebox/pkg/service/modelfile"
)

// Engine holds configuration for the local inference server
type Engine struct {
	baseURL  string
	model    string
	apiKey   string
	modelURL string
	modelDir string
}

// Flags returns CLI flags for engine configuration
func (e *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "engine-url",
			Usage:       "OpenAI-compatible endpoint of the llama.cpp server",
			Value:       "http://127.0.0.1:8080/v1",
			Sources:     cli.EnvVars("GLOVEBOX_ENGINE_URL"),
			Destination: &e.baseURL,
		},
		&cli.StringFlag{
			Name:        "engine-model",
			Usage:       "Model name forwarded to the server",
			Value:       "local",
			Sources:     cli.EnvVars("GLOVEBOX_ENGINE_MODEL"),
			Destination: &e.model,
		},
		&cli.StringFlag{
			Name:        "engine-api-key",
			Usage:       "API key for the engine endpoint (unused by local servers)",
			Sources:     cli.EnvVars("GLOVEBOX_ENGINE_API_KEY"),
			Destination: &e.apiKey,
		},
		&cli.StringFlag{
			Name:        "model-url",
			Usage:       "Remote URL of the model weights to download before starting",
			Sources:     cli.EnvVars("GLOVEBOX_MODEL_URL"),
			Destination: &e.modelURL,
		},
		&cli.StringFlag{
			Name:        "model-dir",
			Usage:       "Local directory for downloaded model weights",
			Value:       "models",
			Sources:     cli.EnvVars("GLOVEBOX_MODEL_DIR"),
			Destination: &e.modelDir,
		},
	}
}

// LogValue implements slog.LogValuer. The API key never reaches the log.
func (e Engine) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", e.baseURL),
		slog.String("model", e.model),
		slog.String("model_url", e.modelURL),
		slog.String("model_dir", e.modelDir),
	)
}

// Configure builds the engine client, first ensuring the model weights
// are present locally when a model URL is configured.
func (e *Engine) Configure(ctx context.Context) (*llamacpp.Engine, error) {
	if e.baseURL == "" {
		return nil, goerr.New("engine URL is required")
	}

	if e.modelURL != "" {
		if _, err := modelfile.New().EnsureLocalCopy(ctx, e.modelURL, e.modelDir); err != nil {
			return nil, goerr.Wrap(err, "failed to acquire model weights")
		}
	}

	return llamacpp.New(llamacpp.Config{
		BaseURL:       e.baseURL,
		Model:         e.model,
		APIKey:        e.apiKey,
		ProbeInterval: time.Second,
	}), nil
}
