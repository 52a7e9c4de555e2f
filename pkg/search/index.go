package search

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"
)

// maxIndexResults is the most rows a single query can return before the
// caller's limit is applied.
const maxIndexResults = 50

// Corpus supplies the posts to index.
type Corpus interface {
	GetAllPosts(ctx context.Context) ([]domain.Post, error)
}

// ScoredPost is a post with its normalized relevance score.
type ScoredPost struct {
	domain.Post
	Score float64 `json:"score"`
}

// Index is an in-memory BM25 index over the posts collection. It is
// rebuilt from the corpus periodically; write paths mark it stale so
// the next refresh picks up the change. Reads and rebuilds are safe to
// run concurrently.
type Index struct {
	corpus Corpus

	mu    sync.RWMutex
	model *Bm25
	posts []domain.Post // indexed by matrix row
	stale bool
	built time.Time
}

// NewIndex creates an index over the given corpus. The index is empty
// until the first Rebuild.
func NewIndex(corpus Corpus) *Index {
	return &Index{
		corpus: corpus,
		stale:  true,
	}
}

// Rebuild fetches the corpus and swaps in a freshly built model.
func (idx *Index) Rebuild(ctx context.Context) error {
	posts, err := idx.corpus.GetAllPosts(ctx)
	if err != nil {
		return fmt.Errorf("load posts for indexing: %w", err)
	}

	documents := make([]*Document, len(posts))
	for i, post := range posts {
		documents[i] = NewDocumentFromString(indexableText(&post), post.ID.Hex(), i)
	}

	model := NewBm25(DefaultB, DefaultK)
	model.Build(documents)
	model.SetMaxResults(maxIndexResults)

	idx.mu.Lock()
	idx.model = model
	idx.posts = posts
	idx.stale = false
	idx.built = time.Now()
	idx.mu.Unlock()

	log.Printf("Search index rebuilt: %d posts, %d terms", len(posts), len(model.terms))
	return nil
}

// MarkStale flags the index for rebuild on the next refresh. Called by
// write paths (create/update/delete).
func (idx *Index) MarkStale() {
	idx.mu.Lock()
	idx.stale = true
	idx.mu.Unlock()
}

// Stale reports whether the index needs a rebuild.
func (idx *Index) Stale() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.stale
}

// RefreshIfStale rebuilds only when a write has happened since the last
// build.
func (idx *Index) RefreshIfStale(ctx context.Context) error {
	if !idx.Stale() {
		return nil
	}
	return idx.Rebuild(ctx)
}

// Run rebuilds the index on the given interval until the context is
// cancelled. Meant to be started as a goroutine by the server. The
// rebuild is unconditional so that documents written outside the API,
// which never mark the index stale, still show up in search.
func (idx *Index) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := idx.Rebuild(ctx); err != nil {
				log.Printf("Search index rebuild failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Search ranks posts against the query and returns up to limit results,
// best first. An unbuilt or empty index returns no results.
func (idx *Index) Search(query string, limit int) []ScoredPost {
	idx.mu.RLock()
	model := idx.model
	posts := idx.posts
	idx.mu.RUnlock()

	if model == nil || len(posts) == 0 {
		return []ScoredPost{}
	}

	results := model.SearchFromString(query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := make([]ScoredPost, 0, len(results))
	for _, res := range results {
		if res.Row < 0 || res.Row >= len(posts) {
			continue
		}
		out = append(out, ScoredPost{Post: posts[res.Row], Score: res.Score})
	}
	return out
}

// Size returns how many posts the index currently covers.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.posts)
}

// indexableText is the searchable surface of a post: title, description
// and categories.
func indexableText(post *domain.Post) string {
	parts := make([]string, 0, 2+len(post.Categories))
	parts = append(parts, post.Title, post.Description)
	parts = append(parts, post.Categories...)
	return strings.Join(parts, " ")
}
