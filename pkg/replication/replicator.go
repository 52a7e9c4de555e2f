package replication

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/domain"
)

// Default batch/parallelism settings, overridable through Config.
const (
	defaultBatchSize = 100
	defaultWorkers   = 5
)

// Config wires the replication dependencies.
type Config struct {
	Mongo  *db.Client
	Target db.DBProvider

	// BatchSize is how many posts are checked/inserted per transaction.
	// Zero means the default.
	BatchSize int

	// Workers is how many batches run in parallel. Zero means the default.
	Workers int
}

// Replicator mirrors the posts collection from MongoDB into a SQL
// database (plain Postgres or Supabase, anything satisfying DBProvider).
//
// This is intentionally a one-shot, "copy everything" flow.
type Replicator struct {
	mongo     *db.Client
	target    db.DBProvider
	batchSize int
	workers   int
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Mongo == nil {
		return nil, fmt.Errorf("mongo client is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target database client is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Replicator{
		mongo:     cfg.Mongo,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}, nil
}

// ReplicatePosts reads all posts from Mongo and inserts them into the
// SQL `post` table, keyed on the Mongo document id (hex string).
//
// Behavior: if an id already exists in the target, we skip inserting it.
// Processes posts in batches to avoid loading all ids into memory at once.
func (r *Replicator) ReplicatePosts(ctx context.Context) error {
	if err := r.ensurePostSchema(ctx); err != nil {
		return err
	}

	posts, err := r.mongo.GetAllPosts(ctx)
	if err != nil {
		return err
	}

	log.Printf("Loaded %d posts from Mongo, processing in batches...", len(posts))

	totalProcessed, totalInserted, err := r.processBatches(ctx, posts)
	if err != nil {
		return err
	}

	log.Printf("Replication complete: processed %d posts, inserted %d new posts", totalProcessed, totalInserted)
	return nil
}

// processBatches processes all posts in batches in parallel and returns total processed and inserted counts.
func (r *Replicator) processBatches(ctx context.Context, posts []domain.Post) (int, int, error) {
	// Create batch jobs
	type batchJob struct {
		batch []domain.Post
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	// Calculate number of batches
	numBatches := (len(posts) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	// Create batches and send to jobs channel
	for start := 0; start < len(posts); start += r.batchSize {
		end := r.calculateBatchEnd(start, r.batchSize, len(posts))
		batch := posts[start:end]
		jobs <- batchJob{batch: batch, start: start, end: end}
	}
	close(jobs)

	// Start worker goroutines
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	// Close results channel when all workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and fail fast on error
	totalProcessed := 0
	totalInserted := 0

	for result := range results {
		if result.err != nil {
			return totalProcessed, totalInserted, result.err
		}

		totalProcessed += result.processed
		totalInserted += result.inserted

		if totalProcessed%1000 == 0 {
			r.logProgress(totalProcessed, len(posts), totalInserted, false)
		}
	}

	// Final progress log
	r.logProgress(totalProcessed, len(posts), totalInserted, true)

	return totalProcessed, totalInserted, nil
}

// calculateBatchEnd calculates the end index for a batch, ensuring it doesn't exceed the total length.
func (r *Replicator) calculateBatchEnd(start, batchSize, totalLen int) int {
	end := start + batchSize
	if end > totalLen {
		return totalLen
	}
	return end
}

// processBatch processes a single batch: checks existing ids, filters new ones, and inserts them.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.Post, start, end int) (int, error) {
	log.Printf("Processing batch [%d:%d] (%d posts)...", start, end, len(batch))

	existing, err := r.checkIDsExistInTarget(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("check existing ids for batch [%d:%d]: %w", start, end, err)
	}
	log.Printf("  Found %d existing ids in target", len(existing))

	toInsert := r.filterNewPostsByID(batch, existing)
	if len(toInsert) == 0 {
		log.Printf("  No new posts to insert")
		return 0, nil
	}

	log.Printf("  Inserting %d new posts...", len(toInsert))
	if err := r.insertPostsTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}
	log.Printf("  Inserted %d posts", len(toInsert))

	return len(toInsert), nil
}

// logProgress logs progress at regular intervals or at completion.
func (r *Replicator) logProgress(processed, total, inserted int, isComplete bool) {
	if processed%1000 == 0 || isComplete {
		log.Printf("Progress: processed %d/%d posts, inserted %d new posts", processed, total, inserted)
	}
}

func (r *Replicator) ensurePostSchema(ctx context.Context) error {
	if r.target.DB() == nil {
		return fmt.Errorf("target DB not connected")
	}

	// Keep schema simple: the Mongo document id (hex) is the primary key,
	// which also gives us uniqueness. Categories are stored as a
	// comma-joined string to stay within database/sql types.
	const ddl = `
CREATE TABLE IF NOT EXISTS post (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  author_name TEXT NOT NULL DEFAULT '',
  image_link TEXT NOT NULL DEFAULT '',
  categories TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  is_featured BOOLEAN NOT NULL DEFAULT false,
  time_of_post TIMESTAMPTZ NOT NULL DEFAULT now(),
  source_url TEXT NOT NULL DEFAULT ''
);`

	if _, err := r.target.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create post table: %w", err)
	}
	return nil
}

// checkIDsExistInTarget checks which ids from the given batch already exist in the target.
// This avoids loading all ids into memory at once.
func (r *Replicator) checkIDsExistInTarget(ctx context.Context, batch []domain.Post) (map[string]bool, error) {
	if r.target.DB() == nil {
		return nil, fmt.Errorf("target DB not connected")
	}
	if len(batch) == 0 {
		return map[string]bool{}, nil
	}

	ids := r.extractIDsFromBatch(batch)
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args := r.buildIDInQuery(ids)
	return r.executeIDQuery(ctx, query, args)
}

// extractIDsFromBatch extracts non-zero ids from a batch of posts.
func (r *Replicator) extractIDsFromBatch(batch []domain.Post) []interface{} {
	ids := make([]interface{}, 0, len(batch))
	for _, p := range batch {
		if !p.ID.IsZero() {
			ids = append(ids, p.ID.Hex())
		}
	}
	return ids
}

// buildIDInQuery builds a SQL query with IN clause and returns the query string and arguments.
// Uses a unique identifier to prevent prepared statement cache conflicts in parallel execution.
func (r *Replicator) buildIDInQuery(ids []interface{}) (string, []interface{}) {
	// Each batch gets a unique query based on the number of ids and a hash of the first id
	// This prevents pgx from trying to cache the same prepared statement across goroutines
	var hashSuffix string
	if len(ids) > 0 {
		if idStr, ok := ids[0].(string); ok {
			hash := md5.Sum([]byte(idStr))
			hashSuffix = fmt.Sprintf("%x", hash[:4]) // Use first 4 bytes of hash
		}
	}
	query := fmt.Sprintf(`/* q_%d_%s */ SELECT id FROM post WHERE id IN (`, len(ids), hashSuffix)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query += ")"
	return query, args
}

// executeIDQuery executes an id query and returns the results as a set.
func (r *Replicator) executeIDQuery(ctx context.Context, query string, args []interface{}) (map[string]bool, error) {
	rows, err := r.target.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		if id != "" {
			set[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

func (r *Replicator) filterNewPostsByID(all []domain.Post, existing map[string]bool) []domain.Post {
	if existing == nil {
		existing = map[string]bool{}
	}

	out := make([]domain.Post, 0, len(all))
	for _, p := range all {
		if p.ID.IsZero() {
			continue
		}
		if existing[p.ID.Hex()] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// insertPostsTx inserts a batch of posts within a transaction.
func (r *Replicator) insertPostsTx(ctx context.Context, batch []domain.Post) error {
	tx, err := r.target.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.executeBatchInsert(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// executeBatchInsert executes the insert statements for a batch of posts.
func (r *Replicator) executeBatchInsert(ctx context.Context, tx *sql.Tx, batch []domain.Post) error {
	const insertQuery = `
INSERT INTO post (id, title, author_name, image_link, categories, description, is_featured, time_of_post, source_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range batch {
		if p.ID.IsZero() {
			continue
		}
		categories := strings.Join(p.Categories, ",")
		if _, err := stmt.ExecContext(ctx, p.ID.Hex(), p.Title, p.AuthorName, p.ImageLink, categories, p.Description, p.IsFeaturedPost, p.TimeOfPost, p.SourceURL); err != nil {
			return fmt.Errorf("insert post id=%q: %w", p.ID.Hex(), err)
		}
	}

	return nil
}
