package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"
)

type stubProcessor struct {
	mu      sync.Mutex
	failOn  map[string]bool
	handled []string
}

func (p *stubProcessor) ProcessContent(ctx context.Context, url string) (*domain.Post, error) {
	p.mu.Lock()
	p.handled = append(p.handled, url)
	p.mu.Unlock()

	if p.failOn[url] {
		return nil, errors.New("extraction failed")
	}
	return &domain.Post{
		Title:       "Post for " + url,
		AuthorName:  "Author",
		ImageLink:   "https://example.com/img.jpg",
		Description: "body",
		TimeOfPost:  time.Now(),
		SourceURL:   url,
	}, nil
}

type stubSaver struct {
	mu    sync.Mutex
	saved []*domain.Post
	err   error
}

func (s *stubSaver) SavePost(ctx context.Context, post *domain.Post) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.saved = append(s.saved, post)
	s.mu.Unlock()
	return nil
}

func TestManager_ProcessURLs(t *testing.T) {
	urls := []string{
		"https://example.com/posts/a",
		"https://example.com/posts/b",
		"https://example.com/posts/c",
	}

	processor := &stubProcessor{}
	saver := &stubSaver{}
	manager := NewManager(2, processor, saver)

	if err := manager.ProcessURLs(context.Background(), urls); err != nil {
		t.Fatalf("ProcessURLs failed: %v", err)
	}

	if len(saver.saved) != len(urls) {
		t.Fatalf("Expected %d saved posts, got %d", len(urls), len(saver.saved))
	}

	seen := make(map[string]bool)
	for _, post := range saver.saved {
		seen[post.SourceURL] = true
	}
	for _, url := range urls {
		if !seen[url] {
			t.Errorf("Expected %s to be saved", url)
		}
	}
}

func TestManager_ProcessURLs_PartialFailure(t *testing.T) {
	urls := []string{
		"https://example.com/posts/ok",
		"https://example.com/posts/broken",
	}

	processor := &stubProcessor{failOn: map[string]bool{
		"https://example.com/posts/broken": true,
	}}
	saver := &stubSaver{}
	manager := NewManager(2, processor, saver)

	// Partial failure is not an error: the run completes with what it could save.
	if err := manager.ProcessURLs(context.Background(), urls); err != nil {
		t.Fatalf("ProcessURLs failed: %v", err)
	}

	if len(saver.saved) != 1 {
		t.Fatalf("Expected 1 saved post, got %d", len(saver.saved))
	}

	if saver.saved[0].SourceURL != "https://example.com/posts/ok" {
		t.Errorf("Wrong post saved: %s", saver.saved[0].SourceURL)
	}
}

func TestManager_ProcessURLs_AllFail(t *testing.T) {
	urls := []string{"https://example.com/posts/x"}

	processor := &stubProcessor{failOn: map[string]bool{urls[0]: true}}
	saver := &stubSaver{}
	manager := NewManager(1, processor, saver)

	if err := manager.ProcessURLs(context.Background(), urls); err == nil {
		t.Fatal("Expected error when every URL fails")
	}
}
