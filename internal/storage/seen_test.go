package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Stable(t *testing.T) {
	a := Hash("Breaking News", "https://www.example.com/story?utm_source=feed")
	b := Hash("  breaking   news ", "https://example.com/story-republished")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestHash_DiffersByDomain(t *testing.T) {
	a := Hash("Breaking News", "https://example.com/story")
	b := Hash("Breaking News", "https://other.com/story")
	assert.NotEqual(t, a, b)
}

func TestSeenCache_MarkAndSeen(t *testing.T) {
	sc := NewSeenCache(filepath.Join(t.TempDir(), "seen.json"), 48)

	hash := Hash("Story", "https://example.com/story")
	assert.False(t, sc.Seen(hash))

	sc.Mark(hash, "Story", "https://example.com/story", "health", "example.com")
	assert.True(t, sc.Seen(hash))
	assert.Equal(t, 1, sc.Len())
}

func TestSeenCache_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	sc := NewSeenCache(path, 48)
	hash := Hash("Story", "https://example.com/story")
	sc.Mark(hash, "Story", "https://example.com/story", "health", "example.com")
	require.NoError(t, sc.Save())

	reloaded := NewSeenCache(path, 48)
	require.NoError(t, reloaded.Load())

	assert.True(t, reloaded.Seen(hash))
	assert.Equal(t, 1, reloaded.Len())
}

func TestSeenCache_LoadMissingFile(t *testing.T) {
	sc := NewSeenCache(filepath.Join(t.TempDir(), "absent.json"), 48)
	require.NoError(t, sc.Load())
	assert.Equal(t, 0, sc.Len())
}

func TestSeenCache_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	sc := NewSeenCache(path, 48)
	assert.Error(t, sc.Load())
}

func TestSeenCache_LoadDropsExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	old := `[{"hash":"aaaa","title":"Old","link":"https://example.com/old","seen_at":"` +
		time.Now().Add(-100*time.Hour).Format(time.RFC3339) + `"},
		{"hash":"bbbb","title":"Fresh","link":"https://example.com/fresh","seen_at":"` +
		time.Now().Add(-time.Hour).Format(time.RFC3339) + `"}]`
	require.NoError(t, os.WriteFile(path, []byte(old), 0o644))

	sc := NewSeenCache(path, 48)
	require.NoError(t, sc.Load())

	assert.False(t, sc.Seen("aaaa"))
	assert.True(t, sc.Seen("bbbb"))
	assert.Equal(t, 1, sc.Len())
}

func TestSeenCache_Cleanup(t *testing.T) {
	sc := NewSeenCache(filepath.Join(t.TempDir(), "seen.json"), 0)

	sc.Mark("aaaa", "Story", "https://example.com/story", "health", "example.com")
	sc.Cleanup()

	assert.Equal(t, 0, sc.Len())
}
