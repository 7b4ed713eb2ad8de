package index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rtvm/rtvm/src/internal/ui"
)

// DefaultHTTPTimeout is the default timeout for catalog requests.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPSource fetches the catalog from a remote mirror.
type HTTPSource struct {
	mirror     string
	httpClient *http.Client
}

// NewHTTPSource creates a Source that fetches <mirror>/index.json.
func NewHTTPSource(mirror string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return NewHTTPSourceWithClient(mirror, &http.Client{Timeout: timeout})
}

// NewHTTPSourceWithClient creates an HTTPSource with a custom HTTP client.
// This is useful for testing or custom timeout/transport configuration.
func NewHTTPSourceWithClient(mirror string, client *http.Client) *HTTPSource {
	return &HTTPSource{
		mirror:     strings.TrimRight(mirror, "/"),
		httpClient: client,
	}
}

// URL returns the catalog URL.
func (s *HTTPSource) URL() string {
	return fmt.Sprintf("%s/%s", s.mirror, CatalogFileName)
}

// Catalog fetches and parses the catalog.
func (s *HTTPSource) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	url := s.URL()
	ui.Debug("Fetching catalog from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &CatalogError{Kind: KindNetwork, URL: url, Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &CatalogError{Kind: KindNetwork, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &CatalogError{Kind: KindNetwork, URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CatalogError{Kind: KindNetwork, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	entries, err := ParseCatalog(data)
	if err != nil {
		return nil, &CatalogError{Kind: KindParse, URL: url, Err: err}
	}

	ui.Debug("Catalog lists %d versions", len(entries))
	return entries, nil
}
