// Package trace records the prompt/response transcript of a workflow run as
// plain "role: content" lines appended to a file, giving a replayable record
// of everything the agents said and observed.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Tracer receives transcript entries from agents.
type Tracer interface {
	// Record appends one role/content entry.
	Record(role, content string)

	// Section marks a boundary (e.g. a new think iteration).
	Section(title string)
}

// FileTracer appends entries to a single trace file. Safe for use from the
// single-threaded workflow; writes are serialized anyway for safety.
type FileTracer struct {
	path string
	mu   sync.Mutex
}

// NewFileTracer creates the trace file's directory if needed and returns a
// tracer appending to path.
func NewFileTracer(path string) (*FileTracer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("trace: create dir: %w", err)
		}
	}
	return &FileTracer{path: path}, nil
}

// Record implements Tracer.
func (t *FileTracer) Record(role, content string) {
	t.append(fmt.Sprintf("%s: %s\n", role, content))
}

// Section implements Tracer.
func (t *FileTracer) Section(title string) {
	rule := strings.Repeat("=", 50)
	t.append(fmt.Sprintf("\n%s\n%s\n%s\n", rule, title, rule))
}

func (t *FileTracer) append(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return // tracing is best-effort, never fails the run
	}
	defer f.Close()
	_, _ = f.WriteString(s)
}

// Nop discards all entries.
type Nop struct{}

// Record implements Tracer.
func (Nop) Record(string, string) {}

// Section implements Tracer.
func (Nop) Section(string) {}
