package interfaces

import "context"

// ImageCapture produces a local image file path, e.g. from a camera.
// Consumed as an external collaborator; failures surface as
// ErrCaptureFailed and leave the conversation untouched.
type ImageCapture interface {
	Capture(ctx context.Context) (string, error)
}

// VisionObserver turns an image into a short textual observation that can
// be fed to a text-only model. The default implementation is a fixed-hint
// stand-in; a real vision model can be plugged in without touching the
// orchestrator.
type VisionObserver interface {
	Describe(ctx context.Context, imagePath string) (string, error)
}
