package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_GetSet(t *testing.T) {
	cache := newTTLCache(time.Minute)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("key", "value")
	value, ok := cache.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestTTLCache_Expiry(t *testing.T) {
	now := time.Now()
	cache := newTTLCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("key", "value")

	// Still live exactly at the TTL boundary
	cache.now = func() time.Time { return now.Add(time.Minute) }
	_, ok := cache.Get("key")
	assert.True(t, ok)

	// Expired entries read as absent
	cache.now = func() time.Time { return now.Add(time.Minute + time.Nanosecond) }
	_, ok = cache.Get("key")
	assert.False(t, ok)
}

func TestTTLCache_SetResetsTTL(t *testing.T) {
	now := time.Now()
	cache := newTTLCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("key", "old")

	cache.now = func() time.Time { return now.Add(50 * time.Second) }
	cache.Set("key", "new")

	cache.now = func() time.Time { return now.Add(100 * time.Second) }
	value, ok := cache.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "new", value)
}

func TestTTLCache_DeleteAndClear(t *testing.T) {
	cache := newTTLCache(time.Minute)
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Delete("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Clear()
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestTTLCache_Mutate(t *testing.T) {
	now := time.Now()
	cache := newTTLCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("live", 1)

	cache.Mutate(func(value interface{}) interface{} {
		return value.(int) + 10
	})

	value, ok := cache.Get("live")
	assert.True(t, ok)
	assert.Equal(t, 11, value)
}

func TestTTLCache_MutateDropsExpired(t *testing.T) {
	now := time.Now()
	cache := newTTLCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("stale", 1)

	cache.now = func() time.Time { return now.Add(2 * time.Minute) }
	calls := 0
	cache.Mutate(func(value interface{}) interface{} {
		calls++
		return value
	})

	assert.Zero(t, calls)
	assert.Empty(t, cache.items)
}
