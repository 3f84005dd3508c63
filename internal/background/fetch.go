package background

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL returns a random high-resolution landscape photo per request.
const DefaultURL = "https://bing.img.run/rand_uhd.php"

// maxImageBytes caps a single download.
const maxImageBytes = 32 << 20

var ErrFetch = errors.New("background fetch failed")

// Fetcher retrieves one image and its content type.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, string, error)
}

// HTTPFetcher downloads an image with a plain GET.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher for url. An empty url uses DefaultURL.
func NewHTTPFetcher(url string) *HTTPFetcher {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPFetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("%w: empty body", ErrFetch)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}
