package react

import (
	"fmt"
	"strings"
)

// Entry is one line of an agent's reasoning transcript.
type Entry struct {
	Role    string
	Content string
}

// Transcript accumulates the reasoning history embedded into each think
// prompt: prior thoughts, tool observations and recovery notes.
type Transcript struct {
	entries []Entry
}

// Add appends an entry.
func (t *Transcript) Add(role, content string) {
	t.entries = append(t.entries, Entry{Role: role, Content: content})
}

// Len returns the number of entries.
func (t *Transcript) Len() int { return len(t.entries) }

// String renders the transcript as "role: content" lines for prompt embedding.
func (t *Transcript) String() string {
	var b strings.Builder
	for _, e := range t.entries {
		fmt.Fprintf(&b, "%s: %s\n", e.Role, e.Content)
	}
	return b.String()
}
