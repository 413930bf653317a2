package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func newTestClient() *Client {
	return NewClient(Options{PageTimeout: 10 * time.Second, UserAgent: "test-agent"})
}

func TestClient_GetString(t *testing.T) {
	page := `<html><body><a href="/x" class="chants-title" title="Валаам">x</a></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	got, err := newTestClient().GetString(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, page, got)
}

func TestClient_GetString_LegacyCharset(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("<html><body>Херувимская</body></html>")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write([]byte(encoded))
	}))
	defer server.Close()

	got, err := newTestClient().GetString(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>Херувимская</body></html>", got)
}

func TestClient_GetString_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient().GetString(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.True(t, errors.Is(err, &FetchError{}))
}

func TestClient_GetString_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient().GetString(context.Background(), url)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.Equal(t, url, fetchErr.URL)
}

func TestClient_GetString_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Options{PageTimeout: 50 * time.Millisecond})
	_, err := client.GetString(context.Background(), server.URL)
	assert.True(t, errors.Is(err, &FetchError{}))
}

func TestClient_DownloadFile_Overwrites(t *testing.T) {
	content := bytes.Repeat([]byte("chant-audio-"), 500) // spans several chunks

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(dest, bytes.Repeat([]byte("old"), 10000), 0644))

	var lastWritten int64
	err := newTestClient().DownloadFile(context.Background(), server.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), lastWritten)
}

func TestClient_DownloadFile_StatusErrorKeepsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "song.mp3")
	err := newTestClient().DownloadFile(context.Background(), server.URL, dest, nil)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

// flakyReader yields empty reads between chunks.
type flakyReader struct {
	chunks []string
	i      int
}

func (r *flakyReader) Read(p []byte) (int, error) {
	if r.i >= len(r.chunks) {
		return 0, errors.New("eof marker missing")
	}
	chunk := r.chunks[r.i]
	r.i++
	if chunk == "EOF" {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

type countingWriter struct {
	writes []int
	buf    strings.Builder
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return w.buf.Write(p)
}

func TestCopyChunks_SkipsEmptyReads(t *testing.T) {
	src := &flakyReader{chunks: []string{"ab", "", "cd", "", "", "e", "EOF"}}
	dst := &countingWriter{}

	require.NoError(t, copyChunks(dst, src))
	assert.Equal(t, "abcde", dst.buf.String())
	assert.Equal(t, []int{2, 2, 1}, dst.writes)
}
