package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps rendered artifacts on disk, one JSON file per key. Files
// are spread over 256 subdirectories named by the first byte of the key hash.
type FileCache struct {
	dir string
}

// NewFileCache opens the cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// entry is the on-disk form of one artifact. Key is stored so a lookup never
// returns an artifact written for another key.
type entry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	Written   time.Time `json:"written"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Dir returns the directory the cache writes to.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the artifact stored under key. Unreadable, foreign and expired
// files are removed and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	var e entry
	if json.Unmarshal(raw, &e) != nil || e.Key != key || e.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes data under key. A zero ttl keeps the artifact until it is
// deleted. Readers never see a partially written file.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	e := entry{Key: key, Data: data, Written: now}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return writeFile(c.path(key), raw)
}

// Delete removes the artifact stored under key, if any.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

// writeFile replaces path with data through a temporary file in the same
// directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Cache = (*FileCache)(nil)
