package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewLocalStoreCreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	_, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store, dir := setupLocalStore(t)

	content := []byte("image bytes")
	require.NoError(t, store.Save(context.Background(), "1_9_a.png", bytes.NewReader(content)))

	data, err := os.ReadFile(filepath.Join(dir, "1_9_a.png"))
	require.NoError(t, err)
	assert.Equal(t, content, data)

	reader, err := store.Open(context.Background(), "1_9_a.png")
	require.NoError(t, err)
	defer reader.Close()
	read, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, read)
}

func TestLocalStoreOpenReturnsFreshReader(t *testing.T) {
	store, _ := setupLocalStore(t)
	require.NoError(t, store.Save(context.Background(), "a.png", bytes.NewReader([]byte("img"))))

	// Each upload attempt opens the file again; both reads must see the
	// full content.
	for i := 0; i < 2; i++ {
		reader, err := store.Open(context.Background(), "a.png")
		require.NoError(t, err)
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		require.NoError(t, reader.Close())
		assert.Equal(t, []byte("img"), data)
	}
}

func TestLocalStoreOpenMissing(t *testing.T) {
	store, _ := setupLocalStore(t)

	_, err := store.Open(context.Background(), "missing.png")
	assert.Error(t, err)
}
