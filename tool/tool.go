// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (data loaders, API calls, side effects) by
// name, with consistent error handling and prompt-ready descriptions.
package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Func is the signature every tool implementation satisfies. Args carries the
// keyword arguments supplied by the model; it is nil when the tool declares
// no inputs.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Tool describes a named callable an agent can invoke. Inputs maps parameter
// names to example values and exists for prompt construction and informal
// argument-name checking only; tools validate their own argument values.
type Tool struct {
	Name        string
	Description string
	Inputs      map[string]any
	Outputs     string
	Func        Func
}

// Describe renders the prompt block advertising this tool to the model.
func (t Tool) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	b.WriteString("  Inputs:\n")
	if len(t.Inputs) == 0 {
		b.WriteString("    None\n")
	} else {
		names := make([]string, 0, len(t.Inputs))
		for name := range t.Inputs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "    %s: %v\n", name, t.Inputs[name])
		}
	}
	outputs := t.Outputs
	if outputs == "" {
		outputs = "No specific output format documented."
	}
	fmt.Fprintf(&b, "  Output:\n    %s\n", outputs)
	return b.String()
}

// UnknownToolError is returned when a requested tool name has no registration.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool: unknown tool %q", e.Name)
}

// Error wraps a failure produced while executing a registered tool.
type Error struct {
	Tool string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool: %s failed: %v", e.Tool, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
