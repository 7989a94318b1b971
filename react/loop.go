// Package react implements the bounded think/decide/act control loop shared
// by the iterative agents. Each cycle renders a prompt over the current state
// and reasoning transcript, asks the model for a decision, and either
// dispatches a tool, records a recovery note, or terminates with an answer.
// Parse failures and unknown tools are recoverable; only the iteration budget
// is a hard stop, and exhausting it is an explicit terminal failure rather
// than a silent no-op.
package react

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/tool"
	"github.com/playbook-agents/playbook/trace"
)

// ErrExhausted is returned when the iteration budget runs out before the
// model produces an answer. Callers treat it as a permanent failure for the
// run.
var ErrExhausted = errors.New("react: iteration budget exhausted without an answer")

// Loop configures one bounded think/decide/act execution.
type Loop struct {
	// Name identifies the agent in logs and traces.
	Name string

	// Model is the LLM gateway.
	Model llm.Client

	// MaxIters bounds the number of think cycles.
	MaxIters int

	// Tools is the registry actions dispatch through. Nil means the agent
	// reasons without tools and any requested action becomes a recovery note.
	Tools *tool.Registry

	// BuildPrompt renders the think prompt from the current transcript.
	BuildPrompt func(transcript string) string

	// Observe converts a successful tool result into the observation recorded
	// on the transcript, merging structured results into the workflow state as
	// a side effect. When nil (or when it returns ""), a generic observation
	// is recorded.
	Observe func(toolName string, result any) string

	// FailOnToolError aborts the run when a registered tool fails, instead of
	// recording the failure as an observation. Unknown tool names are always
	// recoverable regardless of this setting.
	FailOnToolError bool

	Logger logging.Logger
	Tracer trace.Tracer
}

// Outcome summarizes a finished loop.
type Outcome struct {
	Answer    string
	Thinks    int
	ToolCalls int
}

// Run executes think cycles until the model answers, a fatal tool error
// occurs, the context is cancelled, or the budget is exhausted.
func (l *Loop) Run(ctx context.Context, transcript *Transcript) (Outcome, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	tracer := l.Tracer
	if tracer == nil {
		tracer = trace.Nop{}
	}
	if transcript == nil {
		transcript = &Transcript{}
	}

	var out Outcome
	for i := 1; i <= l.MaxIters; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Thinks++
		logger.Info("react.think", "agent", l.Name, "iteration", i, "max", l.MaxIters)
		tracer.Section(fmt.Sprintf("Iteration %d", i))

		prompt := l.BuildPrompt(transcript.String())
		tracer.Record("user", prompt)

		start := time.Now()
		raw, err := l.Model.Complete(ctx, llm.UserMessage(prompt))
		logging.LogModelCall(logger, l.Model.ModelID(), time.Since(start), err)
		if err != nil {
			note := fmt.Sprintf("I got no usable response from the model (%v). Let me try again.", err)
			transcript.Add("assistant", note)
			tracer.Record("assistant", note)
			continue
		}

		transcript.Add("assistant", "Thought: "+raw)
		tracer.Record("assistant", "Thought: "+raw)

		decision, err := DecodeDecision(raw)
		if err != nil {
			logger.Warn("react.decision.malformed", "agent", l.Name, "error", err.Error())
			note := fmt.Sprintf("I encountered an error in processing (%v). Let me try again.", err)
			transcript.Add("assistant", note)
			tracer.Record("assistant", note)
			continue
		}

		if decision.Answered {
			tracer.Record("assistant", "Final Answer: "+decision.Answer)
			out.Answer = decision.Answer
			return out, nil
		}

		if err := l.act(ctx, logger, tracer, transcript, decision.Action, &out); err != nil {
			return out, err
		}
	}

	logger.Warn("react.exhausted", "agent", l.Name, "max_iters", l.MaxIters)
	return out, ErrExhausted
}

func (l *Loop) act(
	ctx context.Context,
	logger logging.Logger,
	tracer trace.Tracer,
	transcript *Transcript,
	action *Action,
	out *Outcome,
) error {
	tracer.Record("assistant", fmt.Sprintf("Action: Using %s tool", action.Name))

	if l.Tools == nil {
		observation := fmt.Sprintf("Error: no tools are available to this agent, cannot use %s", action.Name)
		transcript.Add("system", observation)
		tracer.Record("system", observation)
		return nil
	}

	out.ToolCalls++
	start := time.Now()
	result, err := l.Tools.Invoke(ctx, action.Name, action.Input)
	logging.LogToolCall(logger, action.Name, time.Since(start), err)

	var observation string
	switch {
	case err != nil:
		var unknown *tool.UnknownToolError
		if !errors.As(err, &unknown) && l.FailOnToolError {
			return err
		}
		observation = fmt.Sprintf("Error from %s: %v", action.Name, err)
	default:
		if l.Observe != nil {
			observation = l.Observe(action.Name, result)
		}
		if observation == "" {
			observation = fmt.Sprintf("Observation from %s: %v", action.Name, result)
		}
	}

	transcript.Add("system", observation)
	tracer.Record("system", observation)
	return nil
}
