package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Registry holds the closed set of tools available to an agent. Names are
// normalized at registration so model-side casing never matters; unknown
// names surface as a typed UnknownToolError, not a string comparison deep in
// a control loop.
//
// Registry is not safe for concurrent mutation; register everything during
// agent construction.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds a tool to the registry. Empty names, nil functions and
// duplicate registrations are programming errors and rejected immediately.
func (r *Registry) Register(t Tool) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tool: name must not be empty")
	}
	if t.Func == nil {
		return fmt.Errorf("tool: %s has no implementation", t.Name)
	}
	key := normalize(t.Name)
	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool: %s already registered", t.Name)
	}
	r.tools[key] = t
	r.order = append(r.order, key)
	return nil
}

// MustRegister is Register for static tool sets built at startup.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the tool registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[normalize(name)]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.tools[key].Name)
	}
	return names
}

// Describe renders the prompt block for all registered tools.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, key := range r.order {
		b.WriteString(r.tools[key].Describe())
	}
	return b.String()
}

// Invoke dispatches a call to the named tool. When the tool declares inputs
// and the caller supplied a map, it is passed through as keyword arguments;
// tools with an empty input schema are called with nil args. Argument names
// are checked informally against the declared inputs — unexpected names are
// an error, missing ones are left to the tool itself. Panics inside tool
// implementations are recovered and returned as errors: a misbehaving tool
// must never crash the workflow.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result any, err error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &Error{Tool: t.Name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	if len(t.Inputs) == 0 {
		args = nil
	} else if err := checkArgNames(t, args); err != nil {
		return nil, &Error{Tool: t.Name, Err: err}
	}

	result, err = t.Func(ctx, args)
	if err != nil {
		return nil, &Error{Tool: t.Name, Err: err}
	}
	return result, nil
}

func checkArgNames(t Tool, args map[string]any) error {
	var unexpected []string
	for name := range args {
		if _, ok := t.Inputs[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return fmt.Errorf("unexpected arguments: %s", strings.Join(unexpected, ", "))
	}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
