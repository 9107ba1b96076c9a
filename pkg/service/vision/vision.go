// Package vision provides the image side of the assistant: capturing an
// image path and turning it into a textual observation for the text-only
// model.
package vision

import (
	"context"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glovebox-dev/glovebox/pkg/domain/interfaces"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// defaultHints are the dashboard warning lights the stand-in observer
// cycles through. Each Describe call returns the next one.
var defaultHints = []string{
	"Yellow Rectangular Box with Dots (DPF Light)",
	"Red Oil Can (Low Oil Pressure)",
	"Red Battery Box (Alternator)",
}

// ScenarioObserver is a fixed-hint VisionObserver. It never inspects the
// image; it rotates through a list of canned observations so that the
// image flow can be exercised without a vision model.
type ScenarioObserver struct {
	mu    sync.Mutex
	hints []string
	next  int
}

var _ interfaces.VisionObserver = (*ScenarioObserver)(nil)

// NewScenarioObserver builds an observer over the given hints. With no
// hints it falls back to the built-in dashboard-light set.
func NewScenarioObserver(hints ...string) *ScenarioObserver {
	if len(hints) == 0 {
		hints = defaultHints
	}
	return &ScenarioObserver{hints: hints}
}

func (x *ScenarioObserver) Describe(ctx context.Context, imagePath string) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	hint := x.hints[x.next]
	x.next = (x.next + 1) % len(x.hints)
	return hint, nil
}

// FileCapture is an ImageCapture that hands back a caller-supplied file
// path after checking it exists. It stands in for a camera when images
// come from disk.
type FileCapture struct {
	path string
}

var _ interfaces.ImageCapture = (*FileCapture)(nil)

func NewFileCapture(path string) *FileCapture {
	return &FileCapture{path: path}
}

func (x *FileCapture) Capture(ctx context.Context) (string, error) {
	info, err := os.Stat(x.path)
	if err != nil {
		return "", goerr.Wrap(types.ErrCaptureFailed, "image file is not readable",
			goerr.V("path", x.path),
			goerr.V("cause", err),
		)
	}
	if info.IsDir() {
		return "", goerr.Wrap(types.ErrCaptureFailed, "image path is a directory",
			goerr.V("path", x.path),
		)
	}
	return x.path, nil
}
