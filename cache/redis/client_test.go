package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache_Unreachable(t *testing.T) {
	_, err := NewCache(Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestGet_Unreachable(t *testing.T) {
	c := NewCacheWithClient(goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}), "backport:")
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestKeyPrefix(t *testing.T) {
	c := NewCacheWithClient(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}), "backport:")
	t.Cleanup(func() { _ = c.Close() })
	assert.Equal(t, "backport:lock:catalog_merge", c.key("lock:catalog_merge"))
}

func TestDel_NoKeys(t *testing.T) {
	c := NewCacheWithClient(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}), "")
	t.Cleanup(func() { _ = c.Close() })
	assert.NoError(t, c.Del(context.Background()))
}
