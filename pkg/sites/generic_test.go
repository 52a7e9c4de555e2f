package sites

import (
	"strings"
	"testing"
)

func TestExtractPostLinksFromArticles(t *testing.T) {
	html := `
<html>
<head><base href="https://blog.example.com/"></head>
<body>
  <nav><a href="/about">About</a></nav>
  <article><h2><a href="/posts/lisbon">A Week in Lisbon</a></h2></article>
  <article><h2><a href="/posts/packing">Packing Light</a></h2></article>
  <footer><a href="/privacy">Privacy</a></footer>
</body>
</html>`

	links, err := ExtractPostLinks(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d: %v", len(links), links)
	}
	if links[0].Location != "https://blog.example.com/posts/lisbon" {
		t.Errorf("relative href not resolved: %q", links[0].Location)
	}
	if links[0].Title != "A Week in Lisbon" {
		t.Errorf("unexpected title %q", links[0].Title)
	}
}

func TestExtractPostLinksDeduplicates(t *testing.T) {
	html := `
<body>
  <article>
    <a href="https://blog.example.com/posts/one">One</a>
    <a href="https://blog.example.com/posts/one">One again</a>
  </article>
</body>`

	links, err := ExtractPostLinks(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("expected duplicate href collapsed, got %v", links)
	}
}

func TestExtractPostLinksFallbackSkipsChrome(t *testing.T) {
	html := `
<body>
  <div class="content">
    <a href="https://blog.example.com/2024/03/hidden-beaches">Hidden Beaches</a>
    <a href="https://blog.example.com/tag/beaches">beaches tag</a>
    <a href="https://blog.example.com/login">Log in</a>
  </div>
</body>`

	links, err := ExtractPostLinks(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, link := range links {
		if strings.Contains(link.Location, "/tag/") || strings.Contains(link.Location, "/login") {
			t.Errorf("non-content link survived fallback: %q", link.Location)
		}
	}
	if len(links) != 1 {
		t.Errorf("expected only the post link, got %v", links)
	}
}

func TestExtractPostLinksEmptyPage(t *testing.T) {
	if _, err := ExtractPostLinks("<body><nav><a href='/x'>x</a></nav></body>"); err == nil {
		t.Fatal("expected error when no post links are found")
	}
}
