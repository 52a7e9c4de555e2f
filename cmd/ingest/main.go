package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/config"
	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/pipeline"
	"github.com/albert-sebastian93/wanderlust/pkg/sites"
	"github.com/albert-sebastian93/wanderlust/pkg/urls"
	"github.com/albert-sebastian93/wanderlust/pkg/worker"

	"github.com/robfig/cron/v3"
)

func main() {
	var (
		feed           = flag.String("feed", "", "Feed source: RSS/Atom URL, sitemap URL or local URL-list file")
		mode           = flag.String("mode", urls.ModeAuto, "Source mode: auto, rss, sitemap or file")
		max            = flag.Int("max", 0, "Max post URLs to import per run (<=0 means no limit)")
		urlWorkers     = flag.Int("url-workers", 5, "Number of parallel URL fetch workers")
		contentWorkers = flag.Int("content-workers", 10, "Number of parallel content extraction workers")
		category       = flag.String("category", "", "Category to assign to every imported post")
		pagePattern    = flag.String("page-pattern", "", "Listing-page pattern appended to -feed, e.g. \"?page=%d\"; post links are scraped from each page")
		cronSpec       = flag.String("cron", "", "Cron schedule for repeated runs; empty runs once and exits")

		mongoURI   = flag.String("mongo-uri", "", "MongoDB connection string (defaults to MONGODB_URI)")
		dbName     = flag.String("db", "", "MongoDB database name (defaults to MONGODB_DB)")
		collection = flag.String("collection", "", "MongoDB collection name (defaults to MONGODB_COLLECTION)")
		envFile    = flag.String("env", "", "Optional .env file to load before reading the environment")
	)
	flag.Parse()

	if *feed == "" {
		log.Fatalf("-feed is required")
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *mongoURI == "" {
		*mongoURI = cfg.MongoURI
	}
	if *dbName == "" {
		*dbName = cfg.MongoDatabase
	}
	if *collection == "" {
		*collection = cfg.MongoCollection
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient := db.NewClient(*mongoURI, *dbName, *collection)
	if err := dbClient.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close(context.Background())

	var defaults pipeline.PostDefaults
	if *category != "" {
		defaults.Categories = []string{*category}
	}

	run := func() error {
		start := time.Now()
		log.Printf("Importing posts from %s (max=%d)", *feed, *max)
		var err error
		switch {
		case *pagePattern != "":
			err = runListing(ctx, dbClient, *feed, *pagePattern, *urlWorkers, *contentWorkers, defaults)
		case *max > 0:
			err = runBounded(ctx, dbClient, *mode, *feed, *max, *contentWorkers, defaults)
		default:
			err = runPipeline(ctx, dbClient, *mode, *feed, *urlWorkers, *contentWorkers, defaults)
		}
		if err != nil {
			return err
		}
		log.Printf("Import done. Duration: %s", time.Since(start))
		return nil
	}

	if *cronSpec == "" {
		if err := run(); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(*cronSpec, func() {
		if err := run(); err != nil {
			log.Printf("Scheduled import failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid cron schedule %q: %v", *cronSpec, err)
	}

	// First run happens immediately; the schedule covers the rest.
	if err := run(); err != nil {
		log.Printf("Initial import failed: %v", err)
	}

	scheduler.Start()
	log.Printf("Scheduler running with %q, waiting for signal", *cronSpec)
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	log.Printf("Scheduler stopped")
}

// runPipeline streams every new URL from the source through the
// channel pipeline.
func runPipeline(ctx context.Context, dbClient *db.Client, mode, feed string, urlWorkers, contentWorkers int, defaults pipeline.PostDefaults) error {
	source, err := urls.ResolveFetcher(mode, feed)
	if err != nil {
		return err
	}

	imported, err := dbClient.GetAllSourceURLs(ctx)
	if err != nil {
		return err
	}

	p := pipeline.SourcePipelineBuilder(dbClient, source, defaults, urlWorkers, contentWorkers,
		urls.NewAlreadyImportedFilter(imported))
	return p.Run(ctx, feed)
}

// runListing walks numbered listing pages and scrapes post links out
// of each page's HTML.
func runListing(ctx context.Context, dbClient *db.Client, baseURL, pagePattern string, urlWorkers, contentWorkers int, defaults pipeline.PostDefaults) error {
	imported, err := dbClient.GetAllSourceURLs(ctx)
	if err != nil {
		return err
	}

	p := pipeline.PaginationPipelineBuilder(dbClient, baseURL, pagePattern, defaults,
		1, urlWorkers, contentWorkers, sites.ExtractPostLinks,
		urls.NewAlreadyImportedFilter(imported))
	return p.Run(ctx, baseURL)
}

// runBounded fetches the URL list up front so the -max cap can be
// applied, then hands the remainder to a worker pool.
func runBounded(ctx context.Context, dbClient *db.Client, mode, feed string, max, workers int, defaults pipeline.PostDefaults) error {
	source, err := urls.ResolveFetcher(mode, feed)
	if err != nil {
		return err
	}

	found, err := source.Fetch(feed)
	if err != nil {
		return err
	}

	imported, err := dbClient.GetAllSourceURLs(ctx)
	if err != nil {
		return err
	}

	var pending []string
	for _, u := range found {
		if imported[u.Location] {
			continue
		}
		pending = append(pending, u.Location)
		if len(pending) == max {
			break
		}
	}
	if len(pending) == 0 {
		log.Printf("Nothing new to import from %s", feed)
		return nil
	}
	log.Printf("Importing %d of %d discovered URLs", len(pending), len(found))

	manager := worker.NewManager(workers,
		pipeline.NewHTTPContentProcessor(defaults),
		pipeline.NewDBContentSaver(dbClient))
	return manager.ProcessURLs(ctx, pending)
}
