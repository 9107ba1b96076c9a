package tool

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/glovebox-dev/glovebox/pkg/domain/types"
)

// Registry maps tool names to their definitions. The set of registered
// tools is fixed after setup; the model relies on signatures staying
// consistent across a conversation, so Specs always returns the same
// content in registration order.
type Registry struct {
	tools map[string]gollem.Tool
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]gollem.Tool),
	}
}

// Register adds a tool. Name collisions are a programmer error and fatal
// at startup.
func (r *Registry) Register(t gollem.Tool) error {
	spec := t.Spec()
	if spec.Name == "" {
		return goerr.Wrap(types.ErrInvalidInput, "tool name is empty")
	}
	if _, exists := r.tools[spec.Name]; exists {
		return goerr.Wrap(types.ErrDuplicateToolName, "tool already registered",
			goerr.V(types.ToolNameKey, spec.Name),
		)
	}

	r.tools[spec.Name] = t
	r.order = append(r.order, spec.Name)
	return nil
}

// MustRegister registers all given tools and panics on collision
func (r *Registry) MustRegister(tools ...gollem.Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Specs returns the metadata of all registered tools in registration order
func (r *Registry) Specs() []gollem.ToolSpec {
	specs := make([]gollem.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.order)
}

// Invoke looks up the named tool, checks that all required parameters are
// present, and runs the handler. Validation failures are returned to the
// caller so they can be reported back to the model as a failed call; they
// never crash the turn.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, exists := r.tools[name]
	if !exists {
		return nil, goerr.Wrap(types.ErrUnknownTool, "tool is not registered",
			goerr.V(types.ToolNameKey, name),
		)
	}

	spec := t.Spec()
	for paramName, param := range spec.Parameters {
		if !param.Required {
			continue
		}
		if _, present := args[paramName]; !present {
			return nil, goerr.Wrap(types.ErrMissingParameter, "required parameter is absent",
				goerr.V(types.ToolNameKey, name),
				goerr.V(types.ParameterKey, paramName),
			)
		}
	}

	result, err := t.Run(ctx, args)
	if err != nil {
		return nil, goerr.Wrap(err, "tool execution failed",
			goerr.V(types.ToolNameKey, name),
		)
	}
	return result, nil
}
