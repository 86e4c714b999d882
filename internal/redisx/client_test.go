package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	defer rdb.Close()
	c := NewCache(rdb)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"a":1}`), TTLCatalog))
	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(b))

	mr.FastForward(TTLCatalog + time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExists(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	defer rdb.Close()
	ctx := context.Background()

	ok, err := Exists(ctx, rdb, "dedup:notifier:1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mr.Set("dedup:notifier:1", "1"))
	ok, err = Exists(ctx, rdb, "dedup:notifier:1")
	require.NoError(t, err)
	require.True(t, ok)
}
