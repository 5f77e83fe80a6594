package fetch

import (
	"log/slog"
	"net/http"
)

// FetcherOption is a functional option for configuring a Fetcher via New.
type FetcherOption func(*fetcher)

// WithHTTPClient sets the client used for http(s) URLs.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - FetcherOption: a function that applies the client to a fetcher
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *fetcher) {
		f.client = client
	}
}

// WithMaxBytes caps the size of a fetched resource.
//
// Parameters:
//   - n: the maximum number of bytes
//
// Returns:
//   - FetcherOption: a function that applies the limit to a fetcher
func WithMaxBytes(n int64) FetcherOption {
	return func(f *fetcher) {
		f.maxBytes = n
	}
}

// WithBaseDir resolves relative file paths against dir.
//
// Parameters:
//   - dir: the base directory
//
// Returns:
//   - FetcherOption: a function that applies the directory to a fetcher
func WithBaseDir(dir string) FetcherOption {
	return func(f *fetcher) {
		f.baseDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *fetcher) {
		f.logger = logger
	}
}
