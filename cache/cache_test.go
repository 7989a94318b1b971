package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	ID    string   `json:"id"`
	Teams []string `json:"teams"`
}

func TestDayKey(t *testing.T) {
	day := time.Date(2025, time.April, 3, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-04-03", DayKey(day))
}

func TestStore_MissReturnsFalseWithoutError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	var v payload
	found, err := store.Load("2025-04-03", "events_list", &v)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SaveThenLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	in := payload{ID: "evt1", Teams: []string{"Knicks", "Celtics"}}
	assert.NoError(t, store.Save("2025-04-03", "evt1", in))

	var out payload
	found, err := store.Load("2025-04-03", "evt1", &out)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestStore_DaysAreIsolatedNamespaces(t *testing.T) {
	store, err := NewStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, store.Save("2025-04-03", "evt1", payload{ID: "old"}))

	var v payload
	found, err := store.Load("2025-04-04", "evt1", &v)
	assert.NoError(t, err)
	assert.False(t, found, "a new day must start empty")
}

func TestStore_CorruptEntryIsAnError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	assert.NoError(t, err)

	assert.NoError(t, os.MkdirAll(filepath.Join(dir, "2025-04-03"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "2025-04-03", "evt1.json"), []byte("{truncated"), 0o644))

	var v payload
	_, err = store.Load("2025-04-03", "evt1", &v)
	assert.Error(t, err)
}
