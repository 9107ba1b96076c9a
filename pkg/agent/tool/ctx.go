package tool

import "context"

// UpdateFunc receives a progress line while a tool handler runs. The chat
// surface installs one to echo tool activity between the model round-trips.
type UpdateFunc func(ctx context.Context, message string)

type contextKey struct{}

// WithUpdate returns a context carrying fn for handlers invoked under it.
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, contextKey{}, fn)
}

// Update posts a progress message through the UpdateFunc carried by ctx.
// Without one the call is a no-op, so handlers report unconditionally.
func Update(ctx context.Context, message string) {
	if fn, ok := ctx.Value(contextKey{}).(UpdateFunc); ok {
		fn(ctx, message)
	}
}
