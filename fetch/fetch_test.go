package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFetcher(t *testing.T) *Fetcher {
	t.Helper()
	dir := t.TempDir()
	return &Fetcher{TempDir: dir}
}

func TestFetchDownloadsAndCaches(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("hello world"))
	}))
	defer server.Close()

	f := newFetcher(t)
	path, err := f.Fetch("req-1", server.URL, "media-1", "video.mp4")
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, filepath.Join(f.TempDir, "media-1", "video.mp4"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	path2, err := f.Fetch("req-1", server.URL, "media-1", "video.mp4")
	require.NoError(t, err)
	require.Equal(t, path, path2)
	require.Equal(t, 1, hits, "second Fetch must hit the cache, not the server")
}

func TestFetchNonHTTPPassesThroughExistingPath(t *testing.T) {
	f := newFetcher(t)
	local := filepath.Join(f.TempDir, "existing.mp4")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))

	path, err := f.Fetch("req-1", local, "media-1", "")
	require.NoError(t, err)
	require.Equal(t, local, path)
}

func TestFetchReportsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newFetcher(t)
	_, err := f.Fetch("req-1", server.URL, "media-1", "video.mp4")
	require.Error(t, err)
}

func TestSaveChunkAndAssemble(t *testing.T) {
	f := newFetcher(t)
	require.NoError(t, f.SaveChunk("media-1", 1, []byte("world")))
	require.NoError(t, f.SaveChunk("media-1", 0, []byte("hello ")))

	path, err := f.Assemble("media-1", 2, "video.mp4")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	_, err = os.Stat(f.chunkDir("media-1"))
	require.True(t, os.IsNotExist(err), "chunk dir must be removed after assembly")
}

func TestAssembleDetectsChecksumMismatch(t *testing.T) {
	f := newFetcher(t)
	require.NoError(t, f.SaveChunk("media-1", 0, []byte("hello")))

	// corrupt the chunk after SaveChunk wrote its checksum
	chunkPath := filepath.Join(f.chunkDir("media-1"), "0")
	require.NoError(t, os.WriteFile(chunkPath, []byte("corrupted"), 0o644))

	_, err := f.Assemble("media-1", 1, "video.mp4")
	require.ErrorContains(t, err, "checksum mismatch")
}
