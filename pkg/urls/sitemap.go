package urls

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// XML structures for parsing sitemap XML

// urlSet represents a regular sitemap structure
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

// urlEntry represents a single URL entry in XML
type urlEntry struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// sitemapIndex represents a sitemap index structure
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// sitemapRef represents a reference to another sitemap in an index
type sitemapRef struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// SitemapParser fetches and parses sitemap XML, including sitemap
// indexes that reference further sitemaps
type SitemapParser struct {
	client *http.Client
}

// NewSitemapParser creates a new sitemap parser
func NewSitemapParser() *SitemapParser {
	return &SitemapParser{
		client: &http.Client{},
	}
}

// Fetch implements URLsFetcher - fetches and parses a sitemap from the given URL
func (p *SitemapParser) Fetch(sitemapURL string) ([]URL, error) {
	resp, err := p.client.Get(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Read first few bytes to detect sitemap type
	peekBuffer := make([]byte, 512)
	n, err := resp.Body.Read(peekBuffer)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	content := string(peekBuffer[:n])
	reader := io.MultiReader(strings.NewReader(content), resp.Body)

	// Check if it's a sitemap index (contains <sitemapindex>)
	if strings.Contains(content, "sitemapindex") {
		sitemapURLs, err := p.parseSitemapIndex(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sitemap index: %w", err)
		}

		if len(sitemapURLs) == 0 {
			return nil, fmt.Errorf("sitemap index contained no sitemap URLs")
		}

		// Parse all sitemaps in the index and combine their entries
		var allURLs []URL
		for _, childURL := range sitemapURLs {
			childEntries, err := p.Fetch(childURL)
			if err != nil {
				// Skip broken child sitemaps but keep the rest
				continue
			}
			allURLs = append(allURLs, childEntries...)
		}

		if len(allURLs) == 0 {
			return nil, fmt.Errorf("no entries found in any sitemap from index")
		}

		return allURLs, nil
	}

	// Otherwise, treat it as a regular sitemap
	return p.parseSitemap(reader)
}

// parseSitemapIndex parses a sitemap index file
func (p *SitemapParser) parseSitemapIndex(reader io.Reader) ([]string, error) {
	var index sitemapIndex
	decoder := xml.NewDecoder(reader)

	if err := decoder.Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}

	sitemapURLs := make([]string, 0, len(index.Sitemaps))
	for _, ref := range index.Sitemaps {
		if ref.Location != "" {
			sitemapURLs = append(sitemapURLs, ref.Location)
		}
	}

	return sitemapURLs, nil
}

// parseSitemap parses a regular sitemap XML
func (p *SitemapParser) parseSitemap(reader io.Reader) ([]URL, error) {
	var set urlSet
	decoder := xml.NewDecoder(reader)

	if err := decoder.Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	entries := make([]URL, 0, len(set.URLs))
	for _, entry := range set.URLs {
		if entry.Location != "" {
			entries = append(entries, URL{
				Location: entry.Location,
			})
		}
	}

	return entries, nil
}
