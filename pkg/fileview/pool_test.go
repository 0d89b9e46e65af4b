package fileview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolReusesFreshMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapped.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdefgh"), 0o644))

	pool := NewPool(time.Hour, 0)
	data1, rel1, err := pool.get(path, 8)
	require.NoError(t, err)
	data2, rel2, err := pool.get(path, 8)
	require.NoError(t, err)

	assert.Equal(t, data1, data2)
	require.NoError(t, rel1())
	require.NoError(t, rel2())
}

func TestPoolRefusesUnderMemoryPressure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapped.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdefgh"), 0o644))

	pool := NewPool(time.Hour, 4)
	_, _, err := pool.get(path, 8)
	assert.ErrorIs(t, err, ErrMemoryPressure)
}

func TestPoolEvictsByAge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapped.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdefgh"), 0o644))

	pool := NewPool(time.Nanosecond, 0)
	_, rel, err := pool.get(path, 8)
	require.NoError(t, err)
	require.NoError(t, rel())

	time.Sleep(time.Millisecond)
	pool.mu.Lock()
	pool.evictLocked()
	count := len(pool.entries)
	pool.mu.Unlock()
	assert.Equal(t, 0, count)
}
