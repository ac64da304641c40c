package rcs

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache keeps recently parsed files so that requests for the same file can
// share one immutable File. An entry is reparsed when the file's size or
// modification time changes. Concurrent loads of the same path are
// coalesced into a single parse. The zero value is not usable; create
// caches with NewCache.
type Cache struct {
	entries *lru.Cache[string, *cacheEntry]
	loads   singleflight.Group
	opts    []Option
	log     *zap.SugaredLogger
}

type cacheEntry struct {
	file    *File
	size    int64
	modTime time.Time
}

// NewCache returns a cache holding up to size parsed files. opts are
// passed to ParseFile for every load.
func NewCache(size int, opts ...Option) (*Cache, error) {
	entries, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, err
	}

	// Pick up the logger, if any, the same way the parser does.
	defaults := &parser{file: &File{}, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(defaults)
	}

	return &Cache{entries: entries, opts: opts, log: defaults.log}, nil
}

// Load returns the parsed file at path, parsing it only if it is not
// cached or has changed on disk. Parse failures are not cached.
func (c *Cache) Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if entry, ok := c.entries.Get(path); ok {
		if entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
			c.log.Debugw("rcs cache hit", "path", path)
			return entry.file, nil
		}
		c.log.Debugw("rcs cache stale", "path", path)
	}

	result, err, shared := c.loads.Do(path, func() (any, error) {
		file, err := ParseFile(path, c.opts...)
		if err != nil {
			return nil, err
		}
		c.entries.Add(path, &cacheEntry{file: file, size: info.Size(), modTime: info.ModTime()})
		return file, nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Debugw("rcs cache load", "path", path, "shared", shared)
	return result.(*File), nil
}

// Forget drops any cached entry for path.
func (c *Cache) Forget(path string) {
	c.entries.Remove(path)
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	return c.entries.Len()
}
