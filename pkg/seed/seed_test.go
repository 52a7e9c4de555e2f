package seed

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"
)

const validSeed = `[
  {
    "title": "A Week in Lisbon",
    "authorName": "Asha Rain",
    "imageLink": "https://example.com/lisbon.jpg",
    "categories": ["Travel", "Europe"],
    "description": "Trams, tiles and pastel de nata.",
    "isFeaturedPost": true,
    "timeOfPost": "2024-03-10T09:30:00Z"
  },
  {
    "title": "Packing Light",
    "authorName": "Ben Okafor",
    "imageLink": "https://example.com/pack.jpg",
    "categories": ["Tips"],
    "description": "One bag, two weeks.",
    "isFeaturedPost": false,
    "timeOfPost": "2024-05-01"
  }
]`

func TestLoad(t *testing.T) {
	posts, err := Load(strings.NewReader(validSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	if posts[0].Title != "A Week in Lisbon" || !posts[0].IsFeaturedPost {
		t.Errorf("first post not parsed correctly: %+v", posts[0])
	}

	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !posts[1].TimeOfPost.Equal(want) {
		t.Errorf("expected date-only timestamp %v, got %v", want, posts[1].TimeOfPost)
	}
}

func TestLoadMalformedDocumentNamesIndex(t *testing.T) {
	badSeed := `[
  {
    "title": "Fine",
    "authorName": "Asha Rain",
    "imageLink": "https://example.com/a.jpg",
    "categories": ["Travel"],
    "description": "ok",
    "timeOfPost": "2024-03-10T09:30:00Z"
  },
  {
    "title": "Broken",
    "authorName": "Ben Okafor",
    "imageLink": "https://example.com/b.jpg",
    "categories": ["Tips"],
    "description": "bad date",
    "timeOfPost": "10/03/2024"
  }
]`

	_, err := Load(strings.NewReader(badSeed))
	if err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
	if !strings.Contains(err.Error(), "document 1") {
		t.Errorf("expected error to name document index 1, got: %v", err)
	}
}

func TestLoadInvalidPost(t *testing.T) {
	badSeed := `[
  {
    "title": "",
    "authorName": "Asha Rain",
    "imageLink": "https://example.com/a.jpg",
    "categories": ["Travel"],
    "description": "missing title",
    "timeOfPost": "2024-03-10T09:30:00Z"
  }
]`

	_, err := Load(strings.NewReader(badSeed))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "document 0") {
		t.Errorf("expected error to name document index 0, got: %v", err)
	}
}

func TestLoadNotAnArray(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"title": "x"}`)); err == nil {
		t.Fatal("expected error for non-array seed file")
	}
}

type fakeSaver struct {
	existing map[string]bool
	err      error
	saved    int
}

func (f *fakeSaver) UpsertPost(ctx context.Context, post *domain.Post) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.saved++
	if f.existing[post.Title] {
		return false, nil
	}
	f.existing[post.Title] = true
	return true, nil
}

func TestRun(t *testing.T) {
	posts, err := Load(strings.NewReader(validSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saver := &fakeSaver{existing: map[string]bool{"Packing Light": true}}
	report, err := Run(context.Background(), saver, posts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Inserted != 1 || report.Updated != 1 || report.Total != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
}

// The shipped seed file doubles as mongoimport input, and the driver's
// time codec rejects anything short of a full RFC 3339 timestamp. Every
// timeOfPost in it must therefore be a complete timestamp, not a bare date.
func TestShippedSeedFileTimestampsAreRFC3339(t *testing.T) {
	f, err := os.Open("../../data/sample_posts.json")
	if err != nil {
		t.Fatalf("Failed to open seed file: %v", err)
	}
	defer f.Close()

	var docs []struct {
		Title      string `json:"title"`
		TimeOfPost string `json:"timeOfPost"`
	}
	if err := json.NewDecoder(f).Decode(&docs); err != nil {
		t.Fatalf("Failed to decode seed file: %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("Seed file is empty")
	}

	for i, doc := range docs {
		if _, err := time.Parse(time.RFC3339, doc.TimeOfPost); err != nil {
			t.Errorf("Document %d (%q): timeOfPost %q is not RFC 3339: %v",
				i, doc.Title, doc.TimeOfPost, err)
		}
	}
}

func TestRunStopsOnError(t *testing.T) {
	posts, err := Load(strings.NewReader(validSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saver := &fakeSaver{err: errors.New("connection reset")}
	if _, err := Run(context.Background(), saver, posts); err == nil {
		t.Fatal("expected storage error to propagate")
	}
	if saver.saved != 0 {
		t.Errorf("expected no posts recorded as saved, got %d", saver.saved)
	}
}
