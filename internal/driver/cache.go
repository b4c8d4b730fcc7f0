package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Cache remembers which files are already in sync with one constant table,
// so a repeated run can skip them. Thread-safe for concurrent access.
type Cache struct {
	mu      sync.Mutex
	dir     string
	table   [32]byte
	entries map[string]CacheEntry
	dirty   bool
}

// CacheEntry is what a file looked like after its last rewrite.
type CacheEntry struct {
	Hash   [32]byte
	Unused []string
}

type cachePayload struct {
	Schema uint16
	Table  [32]byte
	Files  map[string]CacheEntry
}

// CacheDir returns the standard cache location for app.
func CacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenCache loads the cache for the table with the given digest from the
// standard location.
func OpenCache(app string, table [32]byte) (*Cache, error) {
	dir, err := CacheDir(app)
	if err != nil {
		return nil, err
	}
	return OpenCacheAt(dir, table)
}

// OpenCacheAt loads the cache for table from dir. A missing, unreadable or
// outdated cache file yields an empty cache.
func OpenCacheAt(dir string, table [32]byte) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	c := &Cache{dir: dir, table: table, entries: make(map[string]CacheEntry)}

	f, err := os.Open(c.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		// битый файл просто перезапишем
		return c, nil
	}
	if payload.Schema == cacheSchemaVersion && payload.Table == table && payload.Files != nil {
		c.entries = payload.Files
	}
	return c, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, "tables", hex.EncodeToString(c.table[:])+".mp")
}

// Lookup returns the recorded unused names when path was last seen with the
// given content hash.
func (c *Cache) Lookup(path string, hash [32]byte) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e.Unused, true
}

// Record stores the state of path after a rewrite.
func (c *Cache) Record(path string, hash [32]byte, unused []string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = CacheEntry{Hash: hash, Unused: unused}
	c.dirty = true
}

// Forget drops path from the cache.
func (c *Cache) Forget(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; ok {
		delete(c.entries, path)
		c.dirty = true
	}
}

// Save writes the cache back if anything changed.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	p := c.path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	payload := cachePayload{Schema: cacheSchemaVersion, Table: c.table, Files: c.entries}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// DropAll invalidates the cache for every table.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	c.entries = make(map[string]CacheEntry)
	c.dirty = false
	return os.RemoveAll(old)
}
