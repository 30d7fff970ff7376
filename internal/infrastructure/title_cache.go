package infrastructure

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yourusername/sstube-go/internal/metrics"
)

// TitleCache remembers media titles by URL so that items already seen during
// enumeration skip the metadata query before download.
type TitleCache struct {
	cache *expirable.LRU[string, string]
}

// NewTitleCache creates a bounded cache whose entries expire after ttl
func NewTitleCache(size int, ttl time.Duration) *TitleCache {
	if size <= 0 {
		size = 1
	}
	return &TitleCache{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Get returns the cached title for url
func (c *TitleCache) Get(url string) (string, bool) {
	if c == nil {
		return "", false
	}
	title, ok := c.cache.Get(url)
	if ok {
		metrics.TitleCacheHitsTotal.Inc()
	} else {
		metrics.TitleCacheMissesTotal.Inc()
	}
	return title, ok
}

// Put stores a title. Empty titles are ignored.
func (c *TitleCache) Put(url, title string) {
	if c == nil || title == "" {
		return
	}
	c.cache.Add(url, title)
}

// Len returns the number of live entries
func (c *TitleCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
