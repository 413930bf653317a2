// Package http provides the HTTP client used to scrape the chant site and
// download audio files.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Separate timeouts for page fetches and file downloads
//   - Transparent gzip/brotli/zstd response decompression
//   - Decoding legacy-encoded pages to UTF-8
//   - Chunked file downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{PageTimeout: 10 * time.Second})
//
//	// Fetch an HTML page
//	html, err := client.GetString(ctx, "https://valaam.ru/chants/")
//
//	// Download a file with a progress callback
//	client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// Failed requests are reported as *FetchError, which carries the URL, the
// HTTP status (if any) and the underlying cause.
package http
