package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "zstd":
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.Write(data)
	}
	return buf.Bytes()
}

func TestCompressionTransport(t *testing.T) {
	page := []byte(`<script>window.vmAudioPlayer({"songs":[]});</script>`)

	for _, encoding := range []string{"gzip", "br", "zstd", ""} {
		name := encoding
		if name == "" {
			name = "identity"
		}
		t.Run(name, func(t *testing.T) {
			body := compress(t, encoding, page)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, acceptEncoding, r.Header.Get("Accept-Encoding"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				_, _ = w.Write(body)
			}))
			defer server.Close()

			got, err := newTestClient().GetString(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, string(page), got)
		})
	}
}

func TestCompressionTransport_StackedEncodings(t *testing.T) {
	page := []byte(`<a href="/chants/1/" class="chants-title" title="Знаменный">x</a>`)

	tests := []struct {
		header string
		layers []string // in the order they are applied
	}{
		{"gzip, br", []string{"gzip", "br"}},
		{"br, zstd", []string{"br", "zstd"}},
		{"zstd,gzip", []string{"zstd", "gzip"}},
		{"gzip, identity", []string{"gzip"}},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			body := page
			for _, layer := range tt.layers {
				body = compress(t, layer, body)
			}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tt.header)
				_, _ = w.Write(body)
			}))
			defer server.Close()

			got, err := newTestClient().GetString(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, string(page), got)
		})
	}
}

func TestCompressionTransport_UnknownEncodingUntouched(t *testing.T) {
	body := compress(t, "gzip", []byte("payload"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress, gzip")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	got, err := newTestClient().Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, body, got, "no layer is decoded when one is unknown")
}

func TestContentEncodings(t *testing.T) {
	tests := []struct {
		header string
		want   []string
	}{
		{"", nil},
		{"gzip", []string{"gzip"}},
		{" GZIP ", []string{"gzip"}},
		{"gzip, br", []string{"gzip", "br"}},
		{"identity", nil},
		{"br, identity, zstd", []string{"br", "zstd"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contentEncodings(tt.header), tt.header)
	}
}
