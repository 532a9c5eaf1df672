package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// CacheEntry is one LLM Cache Entry (spec.md §3): the verbatim response
// text for a fingerprinted prompt, plus the model it was answered by.
type CacheEntry struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Model    string `json:"model"`
}

// Cache is a single JSON file on disk, keyed by prompt fingerprint.
// Concurrent writers serialize on an advisory file lock; readers are
// lock-free (spec.md §5).
type Cache struct {
	Path string
}

// NewCache returns a Cache backed by path. The file need not exist yet.
func NewCache(path string) *Cache {
	return &Cache{Path: path}
}

// Get looks up fingerprint without taking any lock, tolerating a racing
// writer extending the file underneath it.
func (c *Cache) Get(fingerprint string) (CacheEntry, bool, error) {
	entries, err := c.readAll()
	if err != nil {
		return CacheEntry{}, false, err
	}
	entry, ok := entries[fingerprint]
	return entry, ok, nil
}

// Put writes fingerprint -> entry, serializing with other writers via an
// advisory lock on Path+".lock" and committing atomically (temp file, then
// rename).
func (c *Cache) Put(fingerprint string, entry CacheEntry) error {
	lockPath := c.Path + ".lock"
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking cache file: %w", err)
	}
	defer fl.Unlock()

	entries, err := c.readAll()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = make(map[string]CacheEntry)
	}
	entries[fingerprint] = entry

	return c.writeAll(entries)
}

// Entries returns a snapshot of the full cache, used by `pickgo cache
// inspect`.
func (c *Cache) Entries() (map[string]CacheEntry, error) {
	return c.readAll()
}

// Clear replaces the cache contents with an empty JSON map, used by
// `pickgo cache clear`.
func (c *Cache) Clear() error {
	lockPath := c.Path + ".lock"
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking cache file: %w", err)
	}
	defer fl.Unlock()

	return c.writeAll(map[string]CacheEntry{})
}

func (c *Cache) readAll() (map[string]CacheEntry, error) {
	raw, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]CacheEntry{}, nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	if len(raw) == 0 {
		return map[string]CacheEntry{}, nil
	}

	var entries map[string]CacheEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing cache file: %w", err)
	}
	return entries, nil
}

func (c *Cache) writeAll(entries map[string]CacheEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.Path), ".pickgo-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.Path); err != nil {
		return fmt.Errorf("renaming temp cache file: %w", err)
	}
	return nil
}
