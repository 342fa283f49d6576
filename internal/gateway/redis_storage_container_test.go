//go:build container

package gateway_test

import (
	"context"
	"testing"
	"time"

	"tokoadmin/internal/gateway"
	"tokoadmin/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	rdb, err := gateway.NewRedisClient(ctx, testhelpers.Redis(t), "", 0)
	require.NoError(t, err)
	storage := gateway.NewRedisStorage(rdb)
	defer storage.Close()

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("abc", []byte("payload"), time.Minute))
	val, err = storage.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)

	ttl, err := rdb.TTL(ctx, "session:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, rdb.Set(ctx, "unrelated", "1", 0).Err())
	require.NoError(t, storage.Set("def", []byte("x"), 0))
	require.NoError(t, storage.Reset())

	val, err = storage.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, val)
	n, err := rdb.Exists(ctx, "unrelated").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, storage.Set("ghi", []byte("x"), time.Minute))
	require.NoError(t, storage.Delete("ghi"))
	val, err = storage.Get("ghi")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestSessionsPersistInRedis(t *testing.T) {
	ctx := context.Background()
	rdb, err := gateway.NewRedisClient(ctx, testhelpers.Redis(t), "", 0)
	require.NoError(t, err)
	store := gateway.NewSessionStore(gateway.SessionConfig{TTL: time.Hour, Storage: gateway.NewRedisStorage(rdb)})

	env := newGateway(t, store)
	env.login(t)

	keys, err := rdb.Keys(ctx, "session:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}
