package structured

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_PlainObject(t *testing.T) {
	doc, err := Parse(`{"answer": "ready"}`)
	assert.NoError(t, err)
	assert.Equal(t, "ready", doc.Get("answer").String())
}

func TestParse_FencedEquivalents(t *testing.T) {
	// Fenced, tagged and plain renditions of the same payload must decode
	// identically.
	variants := []string{
		`{"thought": "t"}`,
		"```json\n{\"thought\": \"t\"}\n```",
		"```\n{\"thought\": \"t\"}\n```",
		"   json {\"thought\": \"t\"}",
	}
	for _, raw := range variants {
		doc, err := Parse(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, "t", doc.Get("thought").String(), raw)
	}
}

func TestParse_ControlCharactersInStrings(t *testing.T) {
	// Models routinely emit raw newlines inside string values; the decode
	// must tolerate them.
	doc, err := Parse("{\"thought\": \"line one\nline two\"}")
	assert.NoError(t, err)
	assert.Contains(t, doc.Get("thought").String(), "line two")
}

func TestParse_Array(t *testing.T) {
	doc, err := Parse(`[{"event_name": "CPI"}]`)
	assert.NoError(t, err)
	assert.True(t, doc.IsArray())
	assert.Equal(t, "CPI", doc.Array()[0].Get("event_name").String())
}

func TestParse_FailuresReturnTypedError(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "```\n```", `"just a string"`} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr), raw)
	}
}

func TestClean_StripsFencesAndTag(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Clean("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, Clean("`{\"a\":1}`"))
	assert.Equal(t, `{"a":1}`, Clean(`{"a":1}`))
}

func TestValue_DecodesNativeTypes(t *testing.T) {
	v, err := Value(`{"ids": ["1", "2"], "n": 3}`)
	assert.NoError(t, err)
	m, ok := v.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, float64(3), m["n"])
}
