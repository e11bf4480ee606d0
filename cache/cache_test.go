package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCache_SetGetSave(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDocumentCache(dir, time.Hour)
	require.NoError(t, err)

	_, ok := c.Get("https://example.com/runs.yaml")
	assert.False(t, ok)

	c.Set("https://example.com/runs.yaml", []byte("runs: []\n"), `"abc"`)
	item, ok := c.Get("https://example.com/runs.yaml")
	require.True(t, ok)
	assert.Equal(t, []byte("runs: []\n"), item.Data)
	assert.Equal(t, `"abc"`, item.ETag)

	require.NoError(t, c.Save())
	assert.FileExists(t, filepath.Join(dir, cacheFileName))

	reloaded, err := NewDocumentCache(dir, time.Hour)
	require.NoError(t, err)
	item, ok = reloaded.Get("https://example.com/runs.yaml")
	require.True(t, ok)
	assert.Equal(t, []byte("runs: []\n"), item.Data)
}

func TestDocumentCache_Expiry(t *testing.T) {
	c, err := NewDocumentCache(t.TempDir(), time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("a", []byte("x"), "")
	c.Set("b", []byte("y"), "")

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok, "expired")
	stale, ok := c.Stale("a")
	require.True(t, ok)
	assert.Equal(t, []byte("x"), stale.Data)

	total, expired := c.Stats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, expired)

	c.Touch("b")
	_, ok = c.Get("b")
	assert.True(t, ok, "touched entries are fresh again")

	assert.Equal(t, 1, c.CleanExpired())
	_, ok = c.Stale("a")
	assert.False(t, ok)
}

func TestDocumentCache_CorruptFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0644))

	c, err := NewDocumentCache(dir, time.Hour)
	require.NoError(t, err)
	total, _ := c.Stats()
	assert.Zero(t, total)
}

func TestDocumentCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDocumentCache(dir, time.Hour)
	require.NoError(t, err)
	c.Set("a", []byte("x"), "")
	require.NoError(t, c.Save())

	require.NoError(t, c.Clear())
	assert.NoFileExists(t, filepath.Join(dir, cacheFileName))
	_, ok := c.Get("a")
	assert.False(t, ok)
	require.NoError(t, c.Clear(), "clearing twice is fine")
}

func TestDocumentCache_Delete(t *testing.T) {
	c, err := NewDocumentCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	c.Set("a", []byte("x"), "")
	c.Set("b", []byte("y"), "")
	c.Delete("a")
	c.Delete("missing")

	_, ok := c.Stale("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}
