package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, RedisAdapter) {
	mr := miniredis.RunT(t)
	adapter, err := NewRedisAdapter(t.Name(), "test:", &Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return mr, adapter
}

func TestNewRedisAdapter_Singleton(t *testing.T) {
	mr, a := setup(t)

	b, err := NewRedisAdapter(t.Name(), "other:", &Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Same(t, a, GetRedis(t.Name()))
}

func TestNewRedisAdapter_Unreachable(t *testing.T) {
	_, err := NewRedisAdapter(t.Name(), "", &Options{Addrs: []string{"127.0.0.1:1"}, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestKeyValue(t *testing.T) {
	mr, r := setup(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("test:k"))

	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := r.SetNX(ctx, "k", []byte("x"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.Exist(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.Del(ctx, "k"))
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, NilError)
}

func TestIncrWindow(t *testing.T) {
	mr, r := setup(t)
	ctx := context.Background()

	count, left, err := r.IncrWindow(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, left)

	count, left, err = r.IncrWindow(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.True(t, left > 0 && left <= time.Minute)

	mr.FastForward(time.Minute + time.Second)

	count, _, err = r.IncrWindow(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStreams(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()

	require.NoError(t, r.XGroupCreateMkStream(ctx, "s", "g", "0"))
	// second create hits BUSYGROUP and is ignored
	require.NoError(t, r.XGroupCreateMkStream(ctx, "s", "g", "0"))

	id, err := r.XAdd(ctx, "s", map[string]interface{}{"data": "hello"})
	require.NoError(t, err)

	msgs, err := r.XReadGroup(ctx, "g", "c1", "s", 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, "hello", msgs[0].Values["data"])

	pending, err := r.XPending(ctx, "s", "g")
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)

	ext, err := r.XPendingExt(ctx, "s", "g", 10)
	require.NoError(t, err)
	require.Len(t, ext, 1)

	claimed, err := r.XClaim(ctx, "s", "g", "c2", 0, id)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	require.NoError(t, r.XAck(ctx, "s", "g", id))
	pending, err = r.XPending(ctx, "s", "g")
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)

	n, err := r.XLen(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, r.XTrimApprox(ctx, "s", 10))
}
