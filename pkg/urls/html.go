package urls

import (
	"fmt"
	"io"
	"net/http"

	"github.com/albert-sebastian93/wanderlust/pkg/httpclient"
)

// URLExtractor is a function type that extracts URLs from HTML content
type URLExtractor func(html string) ([]URL, error)

// HTMLFetcher handles fetching HTML pages and extracting URLs using a provided extractor
type HTMLFetcher struct {
	client     *httpclient.HTTPClient
	extractor  URLExtractor
	clientType httpclient.ClientType
}

// NewHTMLFetcher creates a new HTML fetcher with the given extractor function
// Uses CloudflareClient by default to avoid 403 errors from Cloudflare-protected sites
func NewHTMLFetcher(extractor URLExtractor) *HTMLFetcher {
	return NewHTMLFetcherWithClient(extractor, httpclient.CloudflareClient)
}

// NewHTMLFetcherWithClient creates a new HTML fetcher with a specific client type
func NewHTMLFetcherWithClient(extractor URLExtractor, clientType httpclient.ClientType) *HTMLFetcher {
	return &HTMLFetcher{
		client:     httpclient.NewClient(clientType),
		extractor:  extractor,
		clientType: clientType,
	}
}

// Fetch implements URLsFetcher interface - fetches HTML from the given URL and extracts URLs
func (f *HTMLFetcher) Fetch(url string) ([]URL, error) {
	html, err := f.fetchHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML: %w", err)
	}

	extracted, err := f.extractURLsFromHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to extract URLs: %w", err)
	}

	if len(extracted) == 0 {
		return nil, fmt.Errorf("no URLs found in HTML")
	}

	return extracted, nil
}

// fetchHTML fetches the HTML content from the given URL
func (f *HTMLFetcher) fetchHTML(url string) (string, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// extractURLsFromHTML extracts URLs from HTML using the configured extractor
func (f *HTMLFetcher) extractURLsFromHTML(html string) ([]URL, error) {
	if f.extractor == nil {
		return nil, fmt.Errorf("extractor function is not set")
	}

	return f.extractor(html)
}
