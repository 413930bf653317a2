package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Album.m3u")

	require.NoError(t, WriteFile(context.Background(), path, []byte("first")))
	require.NoError(t, WriteFile(context.Background(), path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestWriteFile_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Album.m3u")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteFile(ctx, path, []byte("data"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "Album.m3u")
	assert.Error(t, WriteFile(context.Background(), path, []byte("data")))
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads", "Pascha")

	require.NoError(t, EnsureDir(path))
	require.NoError(t, EnsureDir(path), "existing directory is fine")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "downloads")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.Error(t, EnsureDir(filepath.Join(file, "Pascha")))
}
