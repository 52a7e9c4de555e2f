package search

import (
	"context"
	"testing"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hidden Beaches of Portugal", []string{"hidden", "beaches", "of", "portugal"}},
		{"food, travel & fun!", []string{"food", "travel", "fun"}},
		{"a b c", nil}, // single-rune terms dropped
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBm25_Search_RanksMatchingDocumentsFirst(t *testing.T) {
	docs := []*Document{
		NewDocumentFromString("hiking the alps mountain trails", "a", 0),
		NewDocumentFromString("street food markets in bangkok", "b", 1),
		NewDocumentFromString("mountain biking alpine descents mountain passes", "c", 2),
	}

	model := NewBm25(DefaultB, DefaultK)
	model.Build(docs)

	results := model.SearchFromString("mountain")

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	// Document c mentions "mountain" twice and should rank first.
	if results[0].Row != 2 {
		t.Errorf("Expected row 2 first, got row %d", results[0].Row)
	}

	// Top score normalizes to 1.
	if results[0].Score != 1 {
		t.Errorf("Expected top score 1, got %f", results[0].Score)
	}

	if results[1].Score <= 0 || results[1].Score > 1 {
		t.Errorf("Expected second score in (0,1], got %f", results[1].Score)
	}
}

func TestBm25_Search_NoMatch(t *testing.T) {
	docs := []*Document{
		NewDocumentFromString("sunset over the sahara", "a", 0),
	}

	model := NewBm25(DefaultB, DefaultK)
	model.Build(docs)

	if results := model.SearchFromString("snowboarding"); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestBm25_Search_Unbuilt(t *testing.T) {
	model := NewBm25(DefaultB, DefaultK)
	if results := model.SearchFromString("anything"); results != nil {
		t.Errorf("Expected nil results from unbuilt model, got %v", results)
	}
}

// fakeCorpus implements Corpus for index tests.
type fakeCorpus struct {
	posts []domain.Post
	err   error
	calls int
}

func (f *fakeCorpus) GetAllPosts(ctx context.Context) ([]domain.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

func corpusPost(title, description string, categories ...string) domain.Post {
	return domain.Post{
		ID:          primitive.NewObjectID(),
		Title:       title,
		AuthorName:  "Author",
		ImageLink:   "https://example.com/img.jpg",
		Categories:  categories,
		Description: description,
		TimeOfPost:  time.Now(),
	}
}

func TestIndex_RebuildAndSearch(t *testing.T) {
	corpus := &fakeCorpus{posts: []domain.Post{
		corpusPost("Island Hopping in Greece", "Ferries, beaches and tavernas", "Travel"),
		corpusPost("Tokyo Ramen Guide", "The best noodle shops by district", "Food"),
	}}

	idx := NewIndex(corpus)
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	results := idx.Search("ramen noodle", 10)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Tokyo Ramen Guide" {
		t.Errorf("Wrong post ranked first: %s", results[0].Title)
	}

	// Categories are indexed too.
	results = idx.Search("food", 10)
	if len(results) != 1 {
		t.Fatalf("Expected category match, got %d results", len(results))
	}
}

func TestIndex_SearchBeforeBuild(t *testing.T) {
	idx := NewIndex(&fakeCorpus{})
	if results := idx.Search("anything", 10); len(results) != 0 {
		t.Errorf("Expected empty results before first build, got %d", len(results))
	}
}

func TestIndex_StaleLifecycle(t *testing.T) {
	corpus := &fakeCorpus{posts: []domain.Post{
		corpusPost("First", "first body", "Travel"),
	}}
	idx := NewIndex(corpus)

	if !idx.Stale() {
		t.Fatal("New index must start stale")
	}

	if err := idx.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale failed: %v", err)
	}
	if idx.Stale() {
		t.Fatal("Index must be fresh after rebuild")
	}
	if corpus.calls != 1 {
		t.Fatalf("Expected 1 corpus load, got %d", corpus.calls)
	}

	// Fresh index: refresh is a no-op.
	if err := idx.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale failed: %v", err)
	}
	if corpus.calls != 1 {
		t.Fatalf("Expected no corpus load on fresh index, got %d calls", corpus.calls)
	}

	// A write marks it stale; the next refresh rebuilds.
	idx.MarkStale()
	if err := idx.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale failed: %v", err)
	}
	if corpus.calls != 2 {
		t.Fatalf("Expected rebuild after MarkStale, got %d calls", corpus.calls)
	}
}

func TestIndex_SearchLimit(t *testing.T) {
	corpus := &fakeCorpus{posts: []domain.Post{
		corpusPost("Alps One", "mountain trails", "Travel"),
		corpusPost("Alps Two", "mountain huts", "Travel"),
		corpusPost("Alps Three", "mountain lakes", "Travel"),
	}}

	idx := NewIndex(corpus)
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	results := idx.Search("mountain", 2)
	if len(results) != 2 {
		t.Fatalf("Expected limit of 2 results, got %d", len(results))
	}
}
