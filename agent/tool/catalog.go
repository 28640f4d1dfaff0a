package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

// Handler executes one tool invocation. Handlers own their side effects and
// report faults inside the ToolResult, never by panicking or erroring out.
type Handler func(ctx context.Context, args map[string]any) contractx.ToolResult

// Definition is one entry of the typed capability table: a name, a parameter
// schema the model sees and arguments are validated against, and the handler.
type Definition struct {
	Name    string
	Desc    string
	Params  map[string]*schema.ParameterInfo
	Handler Handler
}

// Registry maps tool names to definitions. It is populated at startup and
// read-only afterwards, so it may be shared across runs.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
	}
}

// DefaultRegistry builds a registry carrying the three built-in capabilities:
// shell command, script file, and Python code execution.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	defs := []Definition{
		NewShellRunner().Definition(),
		NewScriptRunner().Definition(),
		NewPythonRunner().Definition(),
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: tool=%s has no handler", contractx.ErrValidation, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("%w: tool=%s already registered", contractx.ErrValidation, def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Infos returns the tool schemas in registration order, for model binding.
func (r *Registry) Infos() []*schema.ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		infos = append(infos, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(def.Params),
		})
	}
	return infos
}

// Invoke dispatches by name. Unknown names, argument validation failures,
// and handler panics all come back as failed results.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result contractx.ToolResult) {
	r.mu.RLock()
	def, ok := r.defs[name]
	r.mu.RUnlock()

	if !ok {
		return contractx.ToolResult{
			Tool:  name,
			Error: fmt.Sprintf("%v: %s", contractx.ErrUnknownTool, name),
		}
	}

	if err := validateArgs(def.Params, args); err != nil {
		return contractx.ToolResult{
			Tool:  name,
			Error: fmt.Sprintf("%v: %v", contractx.ErrValidation, err),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = contractx.ToolResult{
				Tool:  name,
				Error: fmt.Sprintf("tool handler panic: %v", rec),
			}
		}
	}()

	out := def.Handler(ctx, args)
	out.Tool = name
	return out
}

// validateArgs checks required fields and primitive types against the
// parameter table, turning wrong-argument bugs into a typed validation error
// before they reach a handler.
func validateArgs(params map[string]*schema.ParameterInfo, args map[string]any) error {
	for name, info := range params {
		if info == nil {
			continue
		}
		value, present := args[name]
		if !present || value == nil {
			if info.Required {
				return fmt.Errorf("missing required argument %q", name)
			}
			continue
		}
		if err := validateType(name, value, info.Type); err != nil {
			return err
		}
	}
	return nil
}

func validateType(name string, value any, want schema.DataType) error {
	switch want {
	case schema.String:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("argument %q must be a string, got %T", name, value)
		}
	case schema.Boolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean, got %T", name, value)
		}
	case schema.Number, schema.Integer:
		switch value.(type) {
		case float32, float64, int, int32, int64:
		default:
			return fmt.Errorf("argument %q must be a number, got %T", name, value)
		}
	case schema.Array:
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("argument %q must be an array, got %T", name, value)
		}
	case schema.Object:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("argument %q must be an object, got %T", name, value)
		}
	}
	return nil
}
