package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/content"
	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/domain"
	"github.com/albert-sebastian93/wanderlust/pkg/httpclient"
	"github.com/albert-sebastian93/wanderlust/pkg/metrics"
)

// Fallbacks applied when a page carries no usable author or cover image
// markup. Imported posts must still pass domain.Post validation, which
// requires both fields.
const (
	DefaultAuthorName = "Wanderlust Team"
	DefaultImageLink  = "https://images.unsplash.com/photo-1476514525535-07fb3b4ae5f1"
)

// maxDescriptionRunes caps the description of an imported post so a very
// long article body does not blow up the posts collection.
const maxDescriptionRunes = 4000

// PostDefaults configures the fields of imported posts that cannot be
// derived from the page itself.
type PostDefaults struct {
	AuthorName string   // used when the page has no author markup
	ImageLink  string   // used when the page has no og:image or article image
	Categories []string // categories assigned to every imported post
}

func (d PostDefaults) withFallbacks() PostDefaults {
	if d.AuthorName == "" {
		d.AuthorName = DefaultAuthorName
	}
	if d.ImageLink == "" {
		d.ImageLink = DefaultImageLink
	}
	return d
}

// HTTPContentProcessor implements ContentProcessor by fetching HTML from URLs
// and extracting post fields using the content package
type HTTPContentProcessor struct {
	client    *httpclient.HTTPClient
	extractor content.Extractor
	defaults  PostDefaults
}

// NewHTTPContentProcessor creates a new HTTP content processor
func NewHTTPContentProcessor(defaults PostDefaults) *HTTPContentProcessor {
	return &HTTPContentProcessor{
		client:    httpclient.NewClient(httpclient.CloudflareClient),
		extractor: nil, // nil means use default behavior
		defaults:  defaults.withFallbacks(),
	}
}

// NewHTTPContentProcessorWithClient creates a new HTTP content processor with a custom client type
func NewHTTPContentProcessorWithClient(clientType httpclient.ClientType, defaults PostDefaults) *HTTPContentProcessor {
	return &HTTPContentProcessor{
		client:    httpclient.NewClient(clientType),
		extractor: nil,
		defaults:  defaults.withFallbacks(),
	}
}

// SetExtractor sets a custom extractor for the processor
func (p *HTTPContentProcessor) SetExtractor(extractor content.Extractor) {
	p.extractor = extractor
}

// ProcessContent fetches HTML from the URL, extracts post fields, and
// returns a validated Post with SourceURL set to the page URL.
// If an extractor is set, it uses that; otherwise, it uses the default extraction functions
func (p *HTTPContentProcessor) ProcessContent(ctx context.Context, url string) (*domain.Post, error) {
	// Fetch HTML content
	htmlContent, err := p.fetchHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML: %w", err)
	}

	var text, title string

	// Use custom extractor if provided, otherwise use default functions
	if p.extractor != nil {
		text, err = p.extractor.ExtractText(htmlContent)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text: %w", err)
		}

		title, err = p.extractor.ExtractTitle(htmlContent)
		if err != nil {
			return nil, fmt.Errorf("failed to extract title: %w", err)
		}
	} else {
		// Default behavior: use package-level functions
		text, err = content.ExtractText(htmlContent)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text: %w", err)
		}

		title, err = content.ExtractTitle(htmlContent)
		if err != nil {
			return nil, fmt.Errorf("failed to extract title: %w", err)
		}
	}

	author, _ := content.ExtractAuthor(htmlContent)
	if author == "" {
		author = p.defaults.AuthorName
	}

	imageLink, _ := content.ExtractImageLink(htmlContent)
	if imageLink == "" {
		imageLink = p.defaults.ImageLink
	}

	// Page tags become categories unless a category was configured.
	categories := append([]string(nil), p.defaults.Categories...)
	if len(categories) == 0 {
		if tags, _ := content.ExtractTags(htmlContent, domain.MaxCategories); len(tags) > 0 {
			categories = tags
		}
	}

	post := &domain.Post{
		Title:          title,
		AuthorName:     author,
		ImageLink:      imageLink,
		Categories:     categories,
		Description:    content.Summarize(text, maxDescriptionRunes),
		IsFeaturedPost: false,
		TimeOfPost:     time.Now().UTC(),
		SourceURL:      url,
	}

	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("extracted post from %s is not usable: %w", url, err)
	}

	return post, nil
}

// fetchHTML fetches HTML content from a URL
// Uses the configured HTTP client
func (p *HTTPContentProcessor) fetchHTML(url string) (string, error) {
	resp, err := p.client.Get(url)
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

	bodyStr := string(body)

	// Check if we got an error page instead of actual HTML
	if strings.Contains(bodyStr, "Not Acceptable") || strings.TrimSpace(bodyStr) == "" {
		return "", fmt.Errorf("server returned error or empty response (status: %d)", resp.StatusCode)
	}

	return bodyStr, nil
}

// DBContentSaver implements ContentSaver by saving posts to a MongoDB database
type DBContentSaver struct {
	dbClient *db.Client
}

// NewDBContentSaver creates a new database content saver
func NewDBContentSaver(dbClient *db.Client) *DBContentSaver {
	return &DBContentSaver{
		dbClient: dbClient,
	}
}

// SavePost saves a post to the database
func (s *DBContentSaver) SavePost(ctx context.Context, post *domain.Post) error {
	err := s.dbClient.SavePost(ctx, post)
	metrics.RecordIngestedPost(err == nil)
	return err
}
