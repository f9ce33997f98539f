package utility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	c := NewCache(50*time.Millisecond, 0)
	defer c.Stop()

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", "x")
	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("b")
	assert.False(t, ok, "item hết hạn không được trả về")

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestCacheCleanupLoop(t *testing.T) {
	c := NewCache(10*time.Millisecond, 10*time.Millisecond)
	defer c.Stop()

	c.Set("k", true)
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)

	c.Stop()
	c.Stop()
}
