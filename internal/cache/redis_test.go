package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *RedisCache {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set, skipping Redis tests")
	}
	port := os.Getenv("TEST_REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 15
	if v, err := strconv.Atoi(os.Getenv("TEST_REDIS_DB")); err == nil {
		db = v
	}

	rc, err := NewRedisCache(Config{Host: host, Port: port, DB: db})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc
}

func TestRedisCache_SetGet(t *testing.T) {
	rc := setupTestCache(t)
	ctx := context.Background()
	key := "test:seasons:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { rc.Delete(ctx, key) })

	_, ok := rc.Get(ctx, key)
	assert.False(t, ok, "fresh key should miss")

	require.NoError(t, rc.Set(ctx, key, []byte(`{"items":[]}`), time.Minute))

	body, ok := rc.Get(ctx, key)
	require.True(t, ok)
	assert.JSONEq(t, `{"items":[]}`, string(body))

	require.NoError(t, rc.Delete(ctx, key))
	_, ok = rc.Get(ctx, key)
	assert.False(t, ok)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
