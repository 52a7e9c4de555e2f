package worker

import (
	"context"
	"fmt"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"
)

// Processor turns a page URL into a post.
type Processor interface {
	ProcessContent(ctx context.Context, url string) (*domain.Post, error)
}

// Saver persists posts.
type Saver interface {
	SavePost(ctx context.Context, post *domain.Post) error
}

// Worker processes posts from URLs
type Worker struct {
	processor Processor
	saver     Saver
}

// NewWorker creates a new worker
func NewWorker(processor Processor, saver Saver) *Worker {
	return &Worker{
		processor: processor,
		saver:     saver,
	}
}

// ProcessURL processes a single URL: fetches, extracts, and saves the post
func (w *Worker) ProcessURL(ctx context.Context, url string) error {
	post, err := w.processor.ProcessContent(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to process content: %w", err)
	}

	if err := w.saver.SavePost(ctx, post); err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	return nil
}
