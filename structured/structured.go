// Package structured extracts JSON payloads from free-form model output. It
// is the single choke point between the language model and every agent:
// fenced code blocks, leading language tags and raw control characters inside
// string values are all tolerated here so that individual agents never have
// to care about format drift.
package structured

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseError carries the offending text alongside the underlying decode
// failure. It is always returned, never panicked.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("structured: failed to parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Clean strips surrounding whitespace, backtick fences and a leading "json"
// language tag from raw model output, returning the candidate JSON text.
func Clean(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)
	if rest, ok := strings.CutPrefix(cleaned, "json"); ok {
		cleaned = strings.TrimSpace(rest)
	}
	return cleaned
}

// Parse cleans raw model output and decodes it as JSON, returning the parsed
// document. gjson is deliberately lenient: raw newlines and other control
// bytes inside string values, common in model output, do not fail the decode.
func Parse(raw string) (gjson.Result, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return gjson.Result{}, &ParseError{Raw: raw, Err: fmt.Errorf("empty response")}
	}
	// gjson.Valid is not used here: it enforces strict RFC string rules and
	// would reject the raw control bytes models emit inside string values.
	doc := gjson.Parse(cleaned)
	if doc.Type != gjson.JSON {
		return gjson.Result{}, &ParseError{Raw: raw, Err: fmt.Errorf("expected a JSON object or array, got %q", cleaned)}
	}
	return doc, nil
}

// Value cleans and decodes raw model output into native Go values
// (map[string]any / []any / scalars).
func Value(raw string) (any, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return doc.Value(), nil
}
