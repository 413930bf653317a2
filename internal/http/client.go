package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// ChunkSize is the size of the buffer used to stream downloads to disk.
const ChunkSize = 1024

// Options configures a Client.
type Options struct {
	// PageTimeout bounds GetString/Get requests. Zero means no timeout.
	PageTimeout time.Duration

	// DownloadTimeout bounds DownloadFile requests. Zero means no timeout,
	// which suits large audio files on slow links.
	DownloadTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Transport is the base round tripper. Defaults to a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Client wraps HTTP operations used by the downloader.
//
// Client provides:
//   - Configured User-Agent header
//   - Independent page and download timeouts
//   - Compressed response handling
//   - File download with progress tracking
//
// Example usage:
//
//	client := NewClient(Options{PageTimeout: 10 * time.Second})
//
//	// Fetch HTML content
//	html, err := client.GetString(ctx, "https://valaam.ru/chants/")
//
//	// Download file with progress
//	err = client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", nil)
type Client struct {
	pageClient     *http.Client
	downloadClient *http.Client
	userAgent      string
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	transport := newCompressionTransport(base)

	return &Client{
		pageClient: &http.Client{
			Timeout:   opts.PageTimeout,
			Transport: transport,
		},
		downloadClient: &http.Client{
			Timeout:   opts.DownloadTimeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (-1 when unknown).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// do performs a GET request and checks for a 2xx status.
// The caller must close the response body.
func (c *Client) do(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns a *FetchError if:
//   - The request fails
//   - The response status is not 2xx
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	data, _, err := c.get(ctx, url)
	return data, err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := c.do(ctx, c.pageClient, url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// GetString performs a GET request and returns the response body as UTF-8 text.
//
// Valid UTF-8 bodies are returned verbatim. Other bodies are converted
// from the charset declared in the Content-Type header or the page's
// <meta> tags.
//
// Example:
//
//	html, err := client.GetString(ctx, "https://valaam.ru/chants/")
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, contentType, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	if utf8.Valid(body) {
		return string(body), nil
	}

	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("decode body: %w", err)}
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("decode body: %w", err)}
	}
	return string(decoded), nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The file is created (or truncated if it exists) only once the server has
// answered with a 2xx status. The body is streamed to disk in ChunkSize
// chunks; empty reads are skipped. If streaming fails the partial file is
// removed.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: Absolute URL to download from
//   - destPath: Local file path to save to; its directory must exist
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, c.downloadClient, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	copyErr := copyChunks(writer, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		os.Remove(destPath)
		return &FetchError{URL: url, StatusCode: resp.StatusCode, Err: copyErr}
	}
	if closeErr != nil {
		os.Remove(destPath)
		return closeErr
	}
	return nil
}

// copyChunks copies src to dst through a ChunkSize buffer, writing only
// non-empty chunks.
func copyChunks(dst io.Writer, src io.Reader) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
