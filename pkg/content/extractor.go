package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Extractor defines an interface for extracting post fields from HTML content
type Extractor interface {
	ExtractTitle(htmlContent string) (string, error)
	ExtractText(htmlContent string) (string, error)
}

// DefaultExtractor implements the Extractor interface using the standard extraction functions
type DefaultExtractor struct{}

// NewDefaultExtractor creates a new default extractor
func NewDefaultExtractor() *DefaultExtractor {
	return &DefaultExtractor{}
}

// ExtractTitle extracts the post title using the default extraction logic
func (e *DefaultExtractor) ExtractTitle(htmlContent string) (string, error) {
	return ExtractTitle(htmlContent)
}

// ExtractText extracts the post text using the default extraction logic
func (e *DefaultExtractor) ExtractText(htmlContent string) (string, error) {
	return ExtractText(htmlContent)
}

// ExtractText extracts the main body text from HTML content
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}

// ExtractTitle extracts the post title from HTML content with fallback mechanisms
func ExtractTitle(htmlContent string) (string, error) {
	// Try readability first
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		title := strings.TrimSpace(article.Title)
		if title != "" {
			return title, nil
		}
	}

	// Fallback: Try parsing HTML directly with goquery
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Try <title> tag
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	// Try <h1> tag (often the main heading)
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	// Try meta property="og:title"
	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	// Try meta name="title"
	if title, exists := doc.Find("meta[name='title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", fmt.Errorf("title not found in HTML")
}

// ExtractImageLink extracts a cover image URL from HTML content.
// Tries og:image first, then twitter:image, then the first <img> inside
// an <article> or <main> element. Returns an empty string when the page
// has no usable image rather than an error, since a cover image is
// optional for imported posts.
func ExtractImageLink(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if link, exists := doc.Find("meta[property='og:image']").Attr("content"); exists && strings.TrimSpace(link) != "" {
		return strings.TrimSpace(link), nil
	}

	if link, exists := doc.Find("meta[name='twitter:image']").Attr("content"); exists && strings.TrimSpace(link) != "" {
		return strings.TrimSpace(link), nil
	}

	for _, selector := range []string{"article img", "main img"} {
		if link, exists := doc.Find(selector).First().Attr("src"); exists && strings.TrimSpace(link) != "" {
			return strings.TrimSpace(link), nil
		}
	}

	return "", nil
}

// ExtractAuthor extracts the author name from HTML content.
// Returns an empty string when no author markup is present.
func ExtractAuthor(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if author, exists := doc.Find("meta[name='author']").Attr("content"); exists && strings.TrimSpace(author) != "" {
		return strings.TrimSpace(author), nil
	}

	if author, exists := doc.Find("meta[property='article:author']").Attr("content"); exists && strings.TrimSpace(author) != "" {
		// Some sites put a profile URL here instead of a name; skip those
		if !strings.HasPrefix(author, "http://") && !strings.HasPrefix(author, "https://") {
			return strings.TrimSpace(author), nil
		}
	}

	if author := strings.TrimSpace(doc.Find("[rel='author']").First().Text()); author != "" {
		return author, nil
	}

	return "", nil
}

// ExtractTags extracts up to max topic tags from HTML content, from
// article:tag meta entries first and the keywords meta tag as fallback.
// Returns nil when the page carries no tag markup.
func ExtractTags(htmlContent string, max int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var tags []string
	seen := make(map[string]bool)
	add := func(raw string) {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[strings.ToLower(tag)] {
			return
		}
		if max > 0 && len(tags) >= max {
			return
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}

	doc.Find("meta[property='article:tag']").Each(func(_ int, s *goquery.Selection) {
		if tag, exists := s.Attr("content"); exists {
			add(tag)
		}
	})

	if len(tags) == 0 {
		if keywords, exists := doc.Find("meta[name='keywords']").Attr("content"); exists {
			for _, tag := range strings.Split(keywords, ",") {
				add(tag)
			}
		}
	}

	return tags, nil
}

// Summarize shortens extracted text to at most maxRunes runes, cutting
// at a word boundary where possible. Used for post descriptions when a
// page body is very long.
func Summarize(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	if maxRunes <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := string(runes[:maxRunes])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}
