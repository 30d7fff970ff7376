package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTitleCache_PutGet(t *testing.T) {
	cache := NewTitleCache(2, time.Hour)

	cache.Put("a", "Title A")
	cache.Put("b", "")

	title, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "Title A", title)

	_, ok = cache.Get("b")
	assert.False(t, ok, "empty titles are not cached")
}

func TestTitleCache_EvictsOldest(t *testing.T) {
	cache := NewTitleCache(2, time.Hour)

	cache.Put("a", "A")
	cache.Put("b", "B")
	cache.Put("c", "C")

	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestTitleCache_Nil(t *testing.T) {
	var cache *TitleCache

	cache.Put("a", "A")
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}
