package provider

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"media-transcriber/internal/app/errors"
	"media-transcriber/internal/app/utils"
)

// ResultCache stores successful results by content hash. Concurrent misses
// for the same hash share a single engine invocation.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*TranscriptionResult
	group   singleflight.Group
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]*TranscriptionResult)}
}

// Get returns a copy of the cached result for hash.
func (c *ResultCache) Get(hash string) (*TranscriptionResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[hash]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Put stores a copy of r. Failed results are ignored.
func (c *ResultCache) Put(hash string, r *TranscriptionResult) {
	if r == nil || r.Failed() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = r.Clone()
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*TranscriptionResult)
}

// Transcribe serves filePath from the cache or runs compute and caches its
// result when it succeeded. Cache hits are flagged FromCache and report the
// lookup time as their processing time.
func (c *ResultCache) Transcribe(filePath, modelUsed, language string, compute func() *TranscriptionResult) *TranscriptionResult {
	start := time.Now()
	hash, err := utils.CalculateFileHash(filePath)
	if err != nil {
		return NewFailedResult(modelUsed, language, time.Since(start), errors.Wrap(errors.ErrFileReadFailed, err.Error()))
	}

	if cached, ok := c.Get(hash); ok {
		cached.FromCache = true
		cached.ProcessingTime = time.Since(start)
		return cached
	}

	v, _, shared := c.group.Do(hash, func() (interface{}, error) {
		if cached, ok := c.Get(hash); ok {
			cached.FromCache = true
			return cached, nil
		}
		r := compute()
		if r == nil {
			r = NewFailedResult(modelUsed, language, time.Since(start), errors.ErrResponseInvalid)
		}
		c.Put(hash, r)
		return r, nil
	})

	r := v.(*TranscriptionResult)
	if shared {
		r = r.Clone()
	}
	if r.FromCache {
		r.ProcessingTime = time.Since(start)
	}
	return r
}
