package summary

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// resultCacheTTL is how long a computed summary is served verbatim before
// being recomputed.
const resultCacheTTL = 600 * time.Second

type cacheEntry struct {
	stored time.Time
	result SummaryResult
}

// resultCache memoises summary results by request key. Stale entries are
// overwritten in place when their key recurs; they are never purged, which
// is acceptable because the key space (tenant × currency × sample) is tiny.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[string]cacheEntry)}
}

func (c *resultCache) get(key string) (SummaryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.stored) >= resultCacheTTL {
		return SummaryResult{}, false
	}
	return entry.result, true
}

func (c *resultCache) put(key string, result SummaryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{stored: time.Now(), result: result}
}

// cacheKey builds the memo key from the request parameters. The SKU sample
// is sorted so equivalent requests share an entry.
func cacheKey(tenantID, currency string, skuSample []string) string {
	key := tenantID + ":" + currency
	if len(skuSample) > 0 {
		sorted := make([]string, len(skuSample))
		copy(sorted, skuSample)
		sort.Strings(sorted)
		key += ":" + strings.Join(sorted, ",")
	}
	return key
}
