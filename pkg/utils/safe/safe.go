package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/glovebox-dev/glovebox/pkg/utils/logging"
)

// Close safely closes an io.Closer and logs any errors.
// It handles nil closers gracefully.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Remove safely removes a file and logs any errors.
func Remove(ctx context.Context, remove func(string) error, path string) {
	if err := remove(path); err != nil {
		logging.From(ctx).Error("Failed to remove", slog.String("path", path), slog.Any("error", err))
	}
}
