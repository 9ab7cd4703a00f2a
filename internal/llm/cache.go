package llm

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ResponseCache is a bounded LRU cache of completions keyed by the
// user message. Identical prompts hit the cache instead of the
// upstream, which matters when the load-test harness replays the same
// representative message thousands of times.
type ResponseCache struct {
	cache *lru.Cache[string, string]
}

// NewResponseCache creates a cache holding at most size entries.
func NewResponseCache(size int) (*ResponseCache, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &ResponseCache{cache: cache}, nil
}

// Get returns the cached completion for a message, if present.
func (c *ResponseCache) Get(message string) (string, bool) {
	return c.cache.Get(message)
}

// Add stores a completion for a message.
func (c *ResponseCache) Add(message, content string) {
	c.cache.Add(message, content)
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	return c.cache.Len()
}
