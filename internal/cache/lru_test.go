package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLRU(maxSize int, ttl time.Duration) (*LRU[int], *time.Time) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c := NewLRU[int](maxSize, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(4, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	c.Set("a", 2)
	got, _ = c.Get("a")
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Expiry(t *testing.T) {
	c, now := newTestLRU(4, time.Minute)

	c.Set("a", 1)
	*now = now.Add(2 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRU_CleanExpired(t *testing.T) {
	c, now := newTestLRU(10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	*now = now.Add(30 * time.Second)
	c.Set("c", 3)
	*now = now.Add(45 * time.Second)

	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Len())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int](64, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n+j)%80)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
