package widget

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Fetcher retrieves the serialized index.
type Fetcher interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// NewFetcher picks an HTTP fetcher for http(s) URLs and a file fetcher for
// anything else. A nil client means http.DefaultClient.
func NewFetcher(location string, client *http.Client) Fetcher {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		return &HTTPFetcher{URL: location, Client: client}
	}
	return &FileFetcher{Path: strings.TrimPrefix(location, "file://")}
}

// HTTPFetcher downloads the artifact with a GET request.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", f.URL, resp.Status)
	}
	return resp.Body, nil
}

func (f *HTTPFetcher) String() string { return f.URL }

// FileFetcher reads the artifact from the local filesystem.
type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (f *FileFetcher) String() string { return f.Path }
