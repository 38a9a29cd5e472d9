package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	data := []byte(`["./utils","react"]`)
	hash := HashBytes([]byte("file content"))

	require.NoError(t, c.Set("src/index.js", hash, data))

	got, ok := c.Get("src/index.js", hash)
	require.True(t, ok)
	assert.Equal(t, data, got)
}

func TestCacheHashMismatch(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Set("key", HashBytes([]byte("old")), []byte("data")))

	_, ok := c.Get("key", HashBytes([]byte("new")))
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	// Zero TTL makes every entry stale immediately.
	c, err := New(filepath.Join(t.TempDir(), "cache"), 0, true)
	require.NoError(t, err)

	hash := HashBytes([]byte("x"))
	require.NoError(t, c.Set("key", hash, []byte("data")))

	_, ok := c.Get("key", hash)
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	c, err := New("", 24, false)
	require.NoError(t, err)

	require.NoError(t, c.Set("key", "hash", []byte("data")))
	_, ok := c.Get("key", "hash")
	assert.False(t, ok)
	assert.NoError(t, c.Clear())
}

func TestHashBytesStable(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("abc")), HashBytes([]byte("abc")))
	assert.NotEqual(t, HashBytes([]byte("abc")), HashBytes([]byte("abd")))
	assert.Len(t, HashBytes([]byte("abc")), 64)
}
