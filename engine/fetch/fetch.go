// Package fetch retrieves the raw bytes of a GLB by URL.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrTooLarge is returned when a response exceeds the configured byte limit.
var ErrTooLarge = errors.New("resource exceeds size limit")

// Fetcher is the byte-fetch capability.
type Fetcher interface {
	// Fetch reads the whole resource named by rawURL.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - rawURL: a bare file path, a file:// URL or an http(s):// URL
	//
	// Returns:
	//   - []byte: the resource bytes, owned by the caller
	//   - error: error if the resource could not be read
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// fetcher is the implementation of the Fetcher interface.
type fetcher struct {
	client   *http.Client
	maxBytes int64
	baseDir  string
	logger   *slog.Logger
}

var _ Fetcher = &fetcher{}

// New creates a Fetcher handling local paths and http(s) URLs.
//
// Parameters:
//   - options: functional options to configure the fetcher
//
// Returns:
//   - Fetcher: the fetcher
func New(options ...FetcherOption) Fetcher {
	f := &fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: 512 << 20,
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || len(u.Scheme) <= 1 {
		// Bare paths, including Windows drive letters that parse as a one-letter scheme.
		return f.readFile(ctx, rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return f.readFile(ctx, u.Path)
	case "http", "https":
		return f.get(ctx, u.String())
	default:
		return nil, fmt.Errorf("fetch %s: unsupported scheme %q", rawURL, u.Scheme)
	}
}

// readFile reads a local file, resolving relative paths against the base directory.
func (f *fetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fetch %s: is a directory", path)
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("fetch %s: %w (%d > %d bytes)", path, ErrTooLarge, info.Size(), f.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	f.logger.Debug("fetched file", "path", path, "bytes", len(data))
	return data, nil
}

// get performs an HTTP GET and reads at most maxBytes of the body.
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "model/gltf-binary, application/octet-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("fetch %s: %w (limit %d bytes)", rawURL, ErrTooLarge, f.maxBytes)
	}
	f.logger.Debug("fetched url", "url", rawURL, "bytes", len(data))
	return data, nil
}
