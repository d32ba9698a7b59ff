package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores each entry as a JSON envelope holding the payload and
// its expiry. Entries are sharded into 256 subdirectories by key hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates a file-based cache in dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && c.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set writes the entry to a temp file and renames it into place so that
// concurrent readers never observe a partial envelope.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
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

func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry and the emptied shard directories. It returns
// the number of entries removed.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	return c.sweep(ctx, func(string) bool { return true })
}

// Prune removes expired and unreadable entries, leaving live ones in place.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now := c.now()
	return c.sweep(ctx, func(path string) bool {
		raw, err := os.ReadFile(path)
		if err != nil {
			return true
		}
		var entry fileEntry
		if json.Unmarshal(raw, &entry) != nil {
			return true
		}
		return !entry.ExpiresAt.IsZero() && now.After(entry.ExpiresAt)
	})
}

func (c *FileCache) sweep(ctx context.Context, drop func(path string) bool) (int, error) {
	shards, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		sdir := filepath.Join(c.dir, shard.Name())
		entries, err := os.ReadDir(sdir)
		if err != nil {
			continue
		}
		left := len(entries)
		for _, e := range entries {
			path := filepath.Join(sdir, e.Name())
			// In-flight temp files from Set are never .json.
			if e.IsDir() || filepath.Ext(e.Name()) != ".json" || !drop(path) {
				continue
			}
			if os.Remove(path) == nil {
				left--
				removed++
			}
		}
		if left == 0 {
			_ = os.Remove(sdir)
		}
	}
	return removed, nil
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
