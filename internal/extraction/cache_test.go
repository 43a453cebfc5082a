package extraction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.com/a")
	assert.True(t, strings.HasPrefix(a, "recipe-extract:"))
	assert.Len(t, a, len("recipe-extract:")+64)
	assert.Equal(t, a, CacheKey("https://example.com/a"))
	assert.NotEqual(t, a, CacheKey("https://example.com/b"))
}

func TestNewRedisCache(t *testing.T) {
	c, err := NewRedisCache("redis://localhost:6379/2", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, c.ttl)
	require.NoError(t, c.Close())

	_, err = NewRedisCache("http://not-redis", time.Hour)
	require.Error(t, err)
}
