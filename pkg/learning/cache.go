package learning

import (
	"fmt"
	"time"

	"github.com/draftforge/airouter/pkg/provider"
)

// cacheEntry holds a cached response and its write time.
type cacheEntry struct {
	result  provider.Result
	written time.Time
}

// cacheKey derives the cache key from the request type, workflow step,
// and the first 100 characters of the prompt.
func cacheKey(req Request) string {
	prompt := req.Prompt
	if len(prompt) > 100 {
		prompt = prompt[:100]
	}
	return fmt.Sprintf("%s|%s|%s", req.Type, req.Metadata.WorkflowStep, prompt)
}

// cachedResult returns a copy of a TTL-valid cached response.
func (r *Router) cachedResult(key string) (*provider.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[key]
	if !ok || time.Since(entry.written) >= r.cfg.CacheTTL {
		return nil, false
	}
	res := entry.result
	return &res, true
}

// writeCache stores a response and sweeps expired entries. Expired
// entries are otherwise left in place; the sweep on write keeps the map
// bounded without a timer.
func (r *Router) writeCache(key string, res *provider.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.cache[key] = cacheEntry{result: *res, written: now}
	for k, entry := range r.cache {
		if now.Sub(entry.written) >= r.cfg.CacheTTL {
			delete(r.cache, k)
		}
	}
}
