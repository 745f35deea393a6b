package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moodwire/news-pulse/internal/cache"
	"github.com/moodwire/news-pulse/internal/models"
)

func TestCacheGetPut(t *testing.T) {
	c := cache.New(10, time.Hour)
	key := cache.Key("Markets rally on rate cut hopes")

	_, ok := c.Get(key)
	require.False(t, ok)

	c.Put(key, models.SentimentPositive)

	label, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, models.SentimentPositive, label)
}

func TestCacheKeyIsStable(t *testing.T) {
	require.Equal(t, cache.Key("same title"), cache.Key("same title"))
	require.NotEqual(t, cache.Key("one title"), cache.Key("another title"))
}

func TestCacheEvictsOverCapacity(t *testing.T) {
	c := cache.New(2, time.Hour)

	c.Put("a", models.SentimentPositive)
	c.Put("b", models.SentimentNegative)
	c.Put("c", models.SentimentNeutral)

	_, ok := c.Get("a")
	require.False(t, ok)

	label, ok := c.Get("c")
	require.True(t, ok)
	require.Equal(t, models.SentimentNeutral, label)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c := cache.New(10, 20*time.Millisecond)

	c.Put("a", models.SentimentMixed)
	label, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, models.SentimentMixed, label)

	time.Sleep(30 * time.Millisecond)

	_, ok = c.Get("a")
	require.False(t, ok)
}
