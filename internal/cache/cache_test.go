package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissesBeforeFirstPut(t *testing.T) {
	c := New[int](time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	c := New[string](time.Minute)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }

	c.Put("search-100", "result")

	got, ok := c.Get("search-100")
	require.True(t, ok)
	assert.Equal(t, "result", got)

	now = now.Add(time.Minute + time.Second)
	_, ok = c.Get("search-100")
	assert.False(t, ok)
}

func TestGetOrFillFillsOnce(t *testing.T) {
	c := New[int](time.Minute)
	fills := 0
	fill := func() (int, error) {
		fills++
		return 42, nil
	}

	v, err := c.GetOrFill("k", fill)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrFill("k", fill)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, fills)
}

func TestGetOrFillDoesNotCacheErrors(t *testing.T) {
	c := New[int](time.Minute)
	boom := errors.New("fetch failed")
	_, err := c.GetOrFill("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrFill("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidateDropsEntry(t *testing.T) {
	c := New[int](time.Minute)
	c.Put("k", 1)
	c.Invalidate("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestKeysAreIndependent(t *testing.T) {
	c := New[int](time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)

	a, ok := c.Get("a")
	require.True(t, ok)
	b, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
