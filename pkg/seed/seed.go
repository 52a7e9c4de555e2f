// Package seed loads posts from a JSON file into the database.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"
)

// dateOnly is accepted in seed files alongside full RFC 3339 timestamps.
const dateOnly = "2006-01-02"

// doc mirrors one entry in the seed file. The timestamp is kept as a
// string so both supported formats can be parsed explicitly.
type doc struct {
	Title          string   `json:"title"`
	AuthorName     string   `json:"authorName"`
	ImageLink      string   `json:"imageLink"`
	Categories     []string `json:"categories"`
	Description    string   `json:"description"`
	IsFeaturedPost bool     `json:"isFeaturedPost"`
	TimeOfPost     string   `json:"timeOfPost"`
}

// Saver persists one post and reports whether it was newly created.
// *db.Client satisfies it.
type Saver interface {
	UpsertPost(ctx context.Context, post *domain.Post) (bool, error)
}

// Report summarizes a seeding run.
type Report struct {
	Inserted int
	Updated  int
	Total    int
}

// Load parses a JSON array of posts. Parsing stops at the first
// malformed document; the error names its array index.
func Load(r io.Reader) ([]domain.Post, error) {
	var docs []doc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	posts := make([]domain.Post, 0, len(docs))
	for i, d := range docs {
		post, err := d.toPost()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (d doc) toPost() (*domain.Post, error) {
	when, err := parseTime(d.TimeOfPost)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:          d.Title,
		AuthorName:     d.AuthorName,
		ImageLink:      d.ImageLink,
		Categories:     d.Categories,
		Description:    d.Description,
		IsFeaturedPost: d.IsFeaturedPost,
		TimeOfPost:     when,
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("timeOfPost is required")
	}
	if when, err := time.Parse(time.RFC3339, raw); err == nil {
		return when.UTC(), nil
	}
	if when, err := time.Parse(dateOnly, raw); err == nil {
		return when.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timeOfPost %q is neither RFC 3339 nor %s", raw, dateOnly)
}

// Run upserts all posts and returns insert/update counts. It stops on
// the first storage error.
func Run(ctx context.Context, saver Saver, posts []domain.Post) (Report, error) {
	report := Report{Total: len(posts)}
	for i := range posts {
		inserted, err := saver.UpsertPost(ctx, &posts[i])
		if err != nil {
			return report, fmt.Errorf("failed to save post %q: %w", posts[i].Title, err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}
	return report, nil
}
