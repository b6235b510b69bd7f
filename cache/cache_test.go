package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheStoreGetRemove(t *testing.T) {
	c := New[int]()
	_, ok := c.Get("a")
	require.False(t, ok)

	c.Store("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, c.Len())

	c.Remove("a")
	_, ok = c.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestCacheKeys(t *testing.T) {
	c := New[string]()
	c.Store("job-1", "queued")
	c.Store("job-2", "processing")
	require.ElementsMatch(t, []string{"job-1", "job-2"}, c.Keys())
}
