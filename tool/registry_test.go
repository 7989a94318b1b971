package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its input",
		Inputs:      map[string]any{"value": "example"},
		Func: func(_ context.Context, args map[string]any) (any, error) {
			return args["value"], nil
		},
	}
}

func TestRegister_Validation(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Tool{Name: "", Func: func(context.Context, map[string]any) (any, error) { return nil, nil }}))
	assert.Error(t, r.Register(Tool{Name: "no_impl"}))

	assert.NoError(t, r.Register(echoTool("echo")))
	assert.Error(t, r.Register(echoTool("echo")), "duplicate registration must fail")
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(echoTool("load_players_stats"))

	_, ok := r.Lookup("LOAD_PLAYERS_STATS")
	assert.True(t, ok)
	_, ok = r.Lookup("  load_players_stats ")
	assert.True(t, ok)
}

func TestInvoke_UnknownToolIsTyped(t *testing.T) {
	r := NewRegistry()
	_, err := r.Invoke(context.Background(), "ghost", nil)
	assert.Error(t, err)
	var unknown *UnknownToolError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ghost", unknown.Name)
}

func TestInvoke_PassesArgsThrough(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(echoTool("echo"))

	result, err := r.Invoke(context.Background(), "echo", map[string]any{"value": "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "hi", result)
}

func TestInvoke_RejectsUnexpectedArgNames(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(echoTool("echo"))

	_, err := r.Invoke(context.Background(), "echo", map[string]any{"value": "hi", "bogus": 1})
	assert.Error(t, err)
	var terr *Error
	assert.True(t, errors.As(err, &terr))
	assert.Contains(t, terr.Error(), "bogus")
}

func TestInvoke_NoInputToolIgnoresArgs(t *testing.T) {
	called := false
	r := NewRegistry()
	r.MustRegister(Tool{
		Name:        "load_everything",
		Description: "takes no arguments",
		Func: func(_ context.Context, args map[string]any) (any, error) {
			called = true
			assert.Nil(t, args)
			return "ok", nil
		},
	})

	// Models sometimes send an input object anyway; it must be dropped, not
	// rejected.
	result, err := r.Invoke(context.Background(), "load_everything", map[string]any{"noise": true})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", result)
}

func TestInvoke_RecoversPanics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Tool{
		Name:        "explode",
		Description: "panics",
		Func: func(context.Context, map[string]any) (any, error) {
			panic("kaboom")
		},
	})

	_, err := r.Invoke(context.Background(), "explode", nil)
	assert.Error(t, err)
	var terr *Error
	assert.True(t, errors.As(err, &terr))
	assert.Contains(t, terr.Error(), "kaboom")
}

func TestInvoke_WrapsToolErrors(t *testing.T) {
	cause := fmt.Errorf("upstream unavailable")
	r := NewRegistry()
	r.MustRegister(Tool{
		Name:        "flaky",
		Description: "always fails",
		Func: func(context.Context, map[string]any) (any, error) {
			return nil, cause
		},
	})

	_, err := r.Invoke(context.Background(), "flaky", nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, cause))
}

func TestDescribe_RendersAllTools(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(echoTool("echo"))
	r.MustRegister(Tool{
		Name:        "bare",
		Description: "no inputs",
		Func:        func(context.Context, map[string]any) (any, error) { return nil, nil },
	})

	desc := r.Describe()
	assert.Contains(t, desc, "- echo: echoes its input")
	assert.Contains(t, desc, "value: example")
	assert.Contains(t, desc, "- bare: no inputs")
	assert.Contains(t, desc, "None")
	assert.Equal(t, []string{"echo", "bare"}, r.Names())
}
