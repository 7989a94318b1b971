package react

import (
	"fmt"

	"github.com/playbook-agents/playbook/structured"
)

// Action is a tool invocation request extracted from a model response.
type Action struct {
	Name   string
	Reason string
	Input  map[string]any
}

// Decision is the structured outcome of one think step: a thought plus either
// a tool action or a terminal answer.
type Decision struct {
	Thought string
	Action  *Action
	Answer  string
	// Answered distinguishes an explicit answer from its zero value.
	Answered bool
}

// DecodeDecision parses a raw model response into a Decision. The response
// must be a JSON object carrying an "action" or an "answer" key; anything
// else is an error the control loop treats as recoverable.
func DecodeDecision(raw string) (Decision, error) {
	doc, err := structured.Parse(raw)
	if err != nil {
		return Decision{}, err
	}
	if !doc.IsObject() {
		return Decision{}, fmt.Errorf("react: expected a JSON object")
	}

	d := Decision{Thought: doc.Get("thought").String()}

	if action := doc.Get("action"); action.Exists() {
		name := action.Get("name").String()
		if name == "" {
			return Decision{}, fmt.Errorf("react: action is missing a tool name")
		}
		a := &Action{
			Name:   name,
			Reason: action.Get("reason").String(),
		}
		if input := action.Get("input"); input.IsObject() {
			if m, ok := input.Value().(map[string]any); ok && len(m) > 0 {
				a.Input = m
			}
		}
		d.Action = a
		return d, nil
	}

	if answer := doc.Get("answer"); answer.Exists() {
		d.Answer = answer.String()
		d.Answered = true
		return d, nil
	}

	return Decision{}, fmt.Errorf("react: response contains neither an action nor an answer")
}
