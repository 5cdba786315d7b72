package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	value := []byte(`{"id":"a"}`)
	require.NoError(t, c.Set(ctx, "a", value))
	value[2] = 'X'

	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, `{"id":"a"}`, string(got), "cache must keep its own copy")

	require.NoError(t, c.Delete(ctx, "a"))
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryCacheAddKeepsExisting(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	added, err := c.Add(ctx, "a", []byte("old"))
	require.NoError(t, err)
	assert.True(t, added)

	require.NoError(t, c.Set(ctx, "a", []byte("new")))
	added, err = c.Add(ctx, "a", []byte("old"))
	require.NoError(t, err)
	assert.False(t, added)

	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "new", string(got))
}

func TestNew(t *testing.T) {
	c, err := New("none", "")
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "a", []byte("x")))
	_, ok := c.Get(context.Background(), "a")
	assert.False(t, ok)

	c, err = New("redis", "redis://localhost:6379/0")
	require.NoError(t, err)
	assert.Equal(t, "redis", c.Name())

	_, err = New("redis", "::not a url")
	assert.Error(t, err)

	_, err = New("memcached", "")
	assert.Error(t, err)
}
