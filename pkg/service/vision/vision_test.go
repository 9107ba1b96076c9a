package vision_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/glovebox-dev/glovebox/pkg/domain/types"
	"github.com/glovebox-dev/glovebox/pkg/service/vision"
)

func TestScenarioObserver(t *testing.T) {
	t.Run("rotates through default hints", func(t *testing.T) {
		obs := vision.NewScenarioObserver()
		ctx := context.Background()

		first, err := obs.Describe(ctx, "dash.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, first).Equal("Yellow Rectangular Box with Dots (DPF Light)")

		second, err := obs.Describe(ctx, "dash.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, second).Equal("Red Oil Can (Low Oil Pressure)")

		third, err := obs.Describe(ctx, "dash.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, third).Equal("Red Battery Box (Alternator)")

		// Wraps around after the last hint.
		fourth, err := obs.Describe(ctx, "dash.jpg")
		gt.NoError(t, err).Required()
		gt.Value(t, fourth).Equal(first)
	})

	t.Run("custom hints override defaults", func(t *testing.T) {
		obs := vision.NewScenarioObserver("Check Engine (Amber)")
		hint, err := obs.Describe(context.Background(), "x.png")
		gt.NoError(t, err).Required()
		gt.Value(t, hint).Equal("Check Engine (Amber)")
	})
}

func TestFileCapture(t *testing.T) {
	t.Run("returns the path of an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dash.jpg")
		gt.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600)).Required()

		got, err := vision.NewFileCapture(path).Capture(context.Background())
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(path)
	})

	t.Run("missing file fails as capture error", func(t *testing.T) {
		_, err := vision.NewFileCapture("/no/such/image.jpg").Capture(context.Background())
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrCaptureFailed)).True()
	})

	t.Run("directory fails as capture error", func(t *testing.T) {
		_, err := vision.NewFileCapture(t.TempDir()).Capture(context.Background())
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrCaptureFailed)).True()
	})
}
