// Package llm defines the gateway every agent uses to talk to a language
// model: send an ordered message list, get back raw text or an error. All
// conversation history is flattened into the prompt text by the caller — no
// provider-side multi-turn context is used anywhere in this system. Retry
// policy belongs to the calling agent, never to this layer.
package llm

import (
	"context"
	"fmt"
)

// Message is one (role, content) pair of a model request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a single user-role message, the only shape the
// workflows' agents send.
func UserMessage(content string) []Message {
	return []Message{{Role: "user", Content: content}}
}

// Client is the minimal model gateway contract.
type Client interface {
	// Complete sends the messages and returns the raw completion text.
	// Network, auth and malformed-provider-response failures are returned as
	// errors; callers treat them as "no usable response".
	Complete(ctx context.Context, messages []Message) (string, error)

	// ModelID identifies the configured model, for logging.
	ModelID() string
}

// Mock is a deterministic in-memory Client for tests. Responses are consumed
// in order; when the scripted responses run out, Err (or an error) is
// returned.
type Mock struct {
	Responses []string
	Err       error

	// Calls records every prompt Complete received.
	Calls []string

	next int
}

// Complete implements Client.
func (m *Mock) Complete(_ context.Context, messages []Message) (string, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	m.Calls = append(m.Calls, prompt)
	if m.next >= len(m.Responses) {
		if m.Err != nil {
			return "", m.Err
		}
		return "", fmt.Errorf("llm: mock has no response for call %d", m.next+1)
	}
	resp := m.Responses[m.next]
	m.next++
	return resp, nil
}

// ModelID implements Client.
func (m *Mock) ModelID() string { return "mock" }
