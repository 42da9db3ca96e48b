package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFileHashByContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "nested-b.wav")
	c := filepath.Join(dir, "c.wav")
	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("other bytes"), 0o644))

	ha, err := CalculateFileHash(a)
	require.NoError(t, err)
	hb, err := CalculateFileHash(b)
	require.NoError(t, err)
	hc, err := CalculateFileHash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
	assert.Len(t, ha, 64)
}

func TestCalculateFileHashMissing(t *testing.T) {
	_, err := CalculateFileHash(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestGetFileSizeAndIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0o644))

	size, err := GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)

	assert.True(t, IsRegularFile(path))
	assert.False(t, IsRegularFile(dir))
	assert.False(t, IsRegularFile(filepath.Join(dir, "nope")))
}
