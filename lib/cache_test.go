package rcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copySample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "copy,v")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCacheHit(t *testing.T) {
	path := copySample(t)
	cache, err := NewCache(4)
	require.NoError(t, err)

	first, err := cache.Load(path)
	require.NoError(t, err)
	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, path, first.Path)
}

func TestCacheReloadsChangedFile(t *testing.T) {
	path := copySample(t)
	cache, err := NewCache(4)
	require.NoError(t, err)

	first, err := cache.Load(path)
	require.NoError(t, err)

	var buf []byte
	buf, err = os.ReadFile(path)
	require.NoError(t, err)
	buf = append(buf, '\n')
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Head, second.Head)
}

func TestCacheForgetAndErrors(t *testing.T) {
	path := copySample(t)
	cache, err := NewCache(4)
	require.NoError(t, err)

	_, err = cache.Load(path)
	require.NoError(t, err)
	cache.Forget(path)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Load(filepath.Join(t.TempDir(), "missing,v"))
	assert.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken,v")
	require.NoError(t, os.WriteFile(broken, []byte("head 1.1;\n"), 0o644))
	_, err = cache.Load(broken)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Equal(t, 0, cache.Len())

	_, err = NewCache(0)
	assert.Error(t, err)
}
