package http

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// acceptEncoding lists the encodings compressionTransport can undo.
const acceptEncoding = "gzip, br, zstd"

// compressionTransport wraps an http.RoundTripper to advertise and undo
// gzip, brotli and zstd response encodings.
type compressionTransport struct {
	transport http.RoundTripper
}

func newCompressionTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &compressionTransport{transport: base}
}

// RoundTrip implements http.RoundTripper.
func (t *compressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// HEAD, 204 and 304 responses carry nothing to decompress
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	codings := contentEncodings(resp.Header.Get("Content-Encoding"))
	if len(codings) == 0 || !supported(codings) {
		return resp, nil
	}

	// Codings are listed in the order they were applied, so undo them
	// from last to first.
	var reader io.Reader = resp.Body
	var closers []io.Closer
	for i := len(codings) - 1; i >= 0; i-- {
		decoder, closer, err := newDecoder(codings[i], reader)
		if err != nil {
			closeAll(closers)
			resp.Body.Close()
			return nil, err
		}
		reader = decoder
		if closer != nil {
			closers = append(closers, closer)
		}
	}

	resp.Body = &decompressReadCloser{reader: reader, closers: closers, body: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true

	return resp, nil
}

// newDecoder wraps r with the decoder for coding. The returned closer may
// be nil.
func newDecoder(coding string, r io.Reader) (io.Reader, io.Closer, error) {
	switch coding {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz, nil
	case "br":
		return brotli.NewReader(r), nil, nil
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil
	}
	return nil, nil, fmt.Errorf("unsupported content encoding %q", coding)
}

// decompressReadCloser closes the decoders, innermost first, and then the
// original body.
type decompressReadCloser struct {
	reader  io.Reader
	closers []io.Closer
	body    io.ReadCloser
}

func (d *decompressReadCloser) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReadCloser) Close() error {
	readerErr := closeAll(d.closers)
	bodyErr := d.body.Close()
	if readerErr != nil {
		return readerErr
	}
	return bodyErr
}

// closeAll closes closers from last to first and returns the first error.
func closeAll(closers []io.Closer) error {
	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// contentEncodings splits a Content-Encoding header into lowercased
// codings in the order they were applied. identity entries are dropped.
func contentEncodings(header string) []string {
	var codings []string
	for _, part := range strings.Split(header, ",") {
		coding := strings.ToLower(strings.TrimSpace(part))
		if coding == "" || coding == "identity" {
			continue
		}
		codings = append(codings, coding)
	}
	return codings
}

// supported reports whether every coding can be undone. Responses with an
// unknown coding are passed through untouched.
func supported(codings []string) bool {
	for _, coding := range codings {
		switch coding {
		case "gzip", "x-gzip", "br", "zstd":
		default:
			return false
		}
	}
	return true
}
