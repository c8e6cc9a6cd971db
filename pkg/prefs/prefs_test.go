package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", FileName)
	s := NewFileStore(path)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(ctx, ThemeKey, Record{PresetID: "lavender", Mode: "dark"}))
	require.NoError(t, s.Set(ctx, "other", Record{PresetID: "x"}))

	rec, ok, err := NewFileStore(path).Get(ctx, ThemeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{PresetID: "lavender", Mode: "dark"}, rec)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "presetId: lavender")
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, _, err := NewFileStore(path).Get(context.Background(), ThemeKey)
	assert.Error(t, err)
}

func TestMemoryFailSets(t *testing.T) {
	m := NewMemory()
	boom := errors.New("quota")
	m.FailSets(boom)

	err := m.Set(context.Background(), ThemeKey, Record{PresetID: "midnight"})
	assert.ErrorIs(t, err, boom)
	_, ok, _ := m.Get(context.Background(), ThemeKey)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Sets())
}
