// Package sites extracts post links from blog listing pages.
package sites

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/albert-sebastian93/wanderlust/pkg/urls"

	"github.com/PuerkitoBio/goquery"
)

// ExtractPostLinks pulls post URLs out of a listing page. It tries
// the structured containers first (<article>, <main>, title-class
// links) and only falls back to scanning the whole body with the
// navigation chrome stripped out.
func ExtractPostLinks(html string) ([]urls.URL, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	baseURL := pageBaseURL(doc)
	seen := make(map[string]bool)
	var result []urls.URL

	collect := func(selector string) {
		doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
			if u := linkFromSelection(link, baseURL, seen); u != nil {
				result = append(result, *u)
			}
		})
	}

	collect("article a")
	if len(result) == 0 {
		collect("main a")
	}

	for _, selector := range []string{
		"a.entry-title", "a.post-title",
		"h2 a", "h3 a",
		".entry-title a", ".post-title a",
	} {
		collect(selector)
	}

	if len(result) == 0 {
		doc.Find("body a").
			Not("nav a, header a, footer a, .nav a, .menu a, .sidebar a").
			Each(func(_ int, link *goquery.Selection) {
				u := linkFromSelection(link, baseURL, seen)
				if u != nil && looksLikePostLink(u.Location) {
					result = append(result, *u)
				}
			})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no post links found in listing page")
	}
	return result, nil
}

// pageBaseURL resolves the page's own base for relative hrefs, from
// the <base> tag, the canonical link, or the og:url meta tag.
func pageBaseURL(doc *goquery.Document) string {
	if href, ok := doc.Find("base").Attr("href"); ok && href != "" {
		return href
	}

	for _, selector := range []struct{ query, attr string }{
		{"link[rel='canonical']", "href"},
		{"meta[property='og:url']", "content"},
	} {
		raw, ok := doc.Find(selector.query).Attr(selector.attr)
		if !ok || raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || !parsed.IsAbs() {
			continue
		}
		parsed.Path = ""
		parsed.RawQuery = ""
		parsed.Fragment = ""
		return parsed.String()
	}
	return ""
}

func linkFromSelection(link *goquery.Selection, baseURL string, seen map[string]bool) *urls.URL {
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return nil
	}
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return nil
	}

	location := absoluteURL(href, baseURL)
	if location == "" || seen[location] {
		return nil
	}
	seen[location] = true

	title := strings.TrimSpace(link.Text())
	if title == "" {
		title, _ = link.Attr("title")
	}
	if title == "" {
		title = strings.TrimSpace(link.Parent().Text())
	}
	if title == "" {
		title = location
	}

	return &urls.URL{Location: location, Title: title}
}

func absoluteURL(href, baseURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	parsed.Fragment = ""

	if parsed.IsAbs() {
		return parsed.String()
	}
	if baseURL == "" {
		return parsed.String()
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return parsed.String()
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}

// looksLikePostLink filters out the obvious non-content URLs that
// survive the body-wide fallback scan.
func looksLikePostLink(href string) bool {
	skip := []string{
		"/tag/", "/category/", "/author/", "/archive/",
		"/page/", "/search", "/feed", "/rss", "/atom",
		"/login", "/register", "/about", "/contact",
		"/privacy", "/terms", "/cookie",
	}
	lower := strings.ToLower(href)
	for _, pattern := range skip {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}
