package urls

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMLFetcher_Fetch(t *testing.T) {
	page := `<html><body>
		<a href="https://example.com/posts/one">One</a>
		<a href="https://example.com/posts/two">Two</a>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	// Extractor that picks the post links out of the served page
	extractor := func(html string) ([]URL, error) {
		var found []URL
		for _, slug := range []string{"one", "two"} {
			needle := "https://example.com/posts/" + slug
			if strings.Contains(html, needle) {
				found = append(found, URL{Location: needle, Title: slug})
			}
		}
		return found, nil
	}

	fetcher := NewHTMLFetcher(extractor)
	result, err := fetcher.Fetch(server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch URLs: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 URLs, got %d", len(result))
	}
	if result[0].Location != "https://example.com/posts/one" {
		t.Errorf("Unexpected first URL: %s", result[0].Location)
	}
}

func TestHTMLFetcher_Fetch_NoURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer server.Close()

	fetcher := NewHTMLFetcher(func(html string) ([]URL, error) {
		return nil, nil
	})

	if _, err := fetcher.Fetch(server.URL); err == nil {
		t.Error("Expected error when extractor finds no URLs, got nil")
	}
}

func TestHTMLFetcher_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewHTMLFetcher(func(html string) ([]URL, error) {
		return []URL{{Location: "https://example.com"}}, nil
	})

	if _, err := fetcher.Fetch(server.URL); err == nil {
		t.Error("Expected error for 500 response, got nil")
	}
}

func TestHTMLFetcher_Fetch_NilExtractor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	fetcher := NewHTMLFetcher(nil)
	if _, err := fetcher.Fetch(server.URL); err == nil {
		t.Error("Expected error for nil extractor, got nil")
	}
}
