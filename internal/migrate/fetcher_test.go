package migrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"media-migrator/internal/storage"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFetcher(t *testing.T) (*Fetcher, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	return NewFetcher(resty.New(), store, nil), dir
}

func TestDeriveFilename(t *testing.T) {
	name := DeriveFilename("http://x/a.png", 1, 9)
	assert.Equal(t, "1_9_a.png", name)

	// Pure: same inputs, same output.
	assert.Equal(t, name, DeriveFilename("http://x/a.png", 1, 9))

	// Query strings are not part of the basename.
	assert.Equal(t, "7_3_photo.jpg", DeriveFilename("https://cdn.example.com/media/photo.jpg?v=2&w=800", 7, 3))

	// Different identities never collide on the same source path.
	assert.NotEqual(t, DeriveFilename("http://x/a.png", 1, 9), DeriveFilename("http://x/a.png", 2, 9))
}

func TestFetchSavesImage(t *testing.T) {
	content := []byte("\x89PNG\r\n\x1a\nfake image bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write(content)
		assert.NoError(t, err)
	}))
	defer server.Close()

	fetcher, dir := setupFetcher(t)

	img, err := fetcher.Fetch(context.Background(), server.URL+"/a.png", 1, 9)
	require.NoError(t, err)
	assert.Equal(t, "1_9_a.png", img.Name)

	data, err := os.ReadFile(filepath.Join(dir, "1_9_a.png"))
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher, dir := setupFetcher(t)

	img, err := fetcher.Fetch(context.Background(), server.URL+"/a.png", 1, 9)
	assert.Nil(t, img)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "bad status", fetchErr.Reason)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "bad status: 404", fetchErr.Error())

	// No file is left behind for a failed fetch.
	_, statErr := os.Stat(filepath.Join(dir, "1_9_a.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	fetcher, _ := setupFetcher(t)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/a.png", 1, 9)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "exception", fetchErr.Reason)
	assert.Error(t, fetchErr.Unwrap())
}
