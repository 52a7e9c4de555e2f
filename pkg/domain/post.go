package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCategories is the most categories a post may carry.
// The frontend renders up to three category chips per card.
const MaxCategories = 3

// ErrInvalidPost is the base error for post validation failures.
// Callers can match it with errors.Is to distinguish bad input from
// storage errors.
var ErrInvalidPost = errors.New("invalid post")

// Post represents a blog post stored in the posts collection.
type Post struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title          string             `bson:"title" json:"title"`
	AuthorName     string             `bson:"authorName" json:"authorName"`
	ImageLink      string             `bson:"imageLink" json:"imageLink"`
	Categories     []string           `bson:"categories" json:"categories"`
	Description    string             `bson:"description" json:"description"`
	IsFeaturedPost bool               `bson:"isFeaturedPost" json:"isFeaturedPost"`
	TimeOfPost     time.Time          `bson:"timeOfPost" json:"timeOfPost"`

	// SourceURL is set only on posts imported from an external feed.
	// It is the import dedup key and is never exposed to the frontend.
	SourceURL string `bson:"sourceUrl,omitempty" json:"-"`
}

// Validate checks that the post has all required fields and reports the
// first violation found. Duplicate categories are collapsed in place.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if strings.TrimSpace(p.AuthorName) == "" {
		return fmt.Errorf("%w: authorName is required", ErrInvalidPost)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidPost)
	}
	if err := validateImageLink(p.ImageLink); err != nil {
		return err
	}

	p.Categories = dedupeCategories(p.Categories)
	if len(p.Categories) > MaxCategories {
		return fmt.Errorf("%w: at most %d categories allowed, got %d", ErrInvalidPost, MaxCategories, len(p.Categories))
	}

	return nil
}

// validateImageLink requires an absolute http(s) URL.
func validateImageLink(link string) error {
	if strings.TrimSpace(link) == "" {
		return fmt.Errorf("%w: imageLink is required", ErrInvalidPost)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: imageLink is not a valid URL", ErrInvalidPost)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: imageLink must use http or https", ErrInvalidPost)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: imageLink must be an absolute URL", ErrInvalidPost)
	}

	return nil
}

// dedupeCategories trims whitespace and drops empty and repeated
// categories, preserving the original order.
func dedupeCategories(categories []string) []string {
	if len(categories) == 0 {
		return categories
	}

	seen := make(map[string]bool, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// HasCategory reports whether the post carries the given category,
// compared case-insensitively.
func (p *Post) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
