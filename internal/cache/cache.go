// Package cache provides a file-backed cache for per-file reference
// extraction results, validated by content hash.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Cache stores extraction results keyed by file path and validated by a
// BLAKE3 hash of the file's content. A disabled cache is a no-op.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

type entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir. When enabled is false the returned
// cache accepts all calls and caches nothing.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// HashBytes returns the hex BLAKE3 hash of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// Get returns the cached data for key, provided the stored content hash
// matches and the entry has not expired.
func (c *Cache) Get(key, hash string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	raw, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if e.Hash != hash {
		return nil, false
	}
	if time.Since(e.Timestamp) > c.ttl {
		os.Remove(c.keyPath(key))
		return nil, false
	}

	return e.Data, true
}

// Set stores data under key, tagged with the content hash.
func (c *Cache) Set(key, hash string, data []byte) error {
	if !c.enabled {
		return nil
	}

	raw, err := json.Marshal(entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), raw, 0o600)
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath maps a key onto a filename. Keys are arbitrary paths, so the
// filename is an xxhash of the key rather than the key itself.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, strconv.FormatUint(xxhash.Sum64String(key), 16)+".json")
}
