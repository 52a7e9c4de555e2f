package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/config"
	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/httpapi"
	"github.com/albert-sebastian93/wanderlust/pkg/metrics"
	"github.com/albert-sebastian93/wanderlust/pkg/middleware"
	"github.com/albert-sebastian93/wanderlust/pkg/search"

	"github.com/gorilla/mux"
)

func main() {
	envFile := flag.String("env", "", "Optional .env file to load before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient := db.NewClient(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err := dbClient.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close(context.Background())

	index := search.NewIndex(dbClient)
	if err := index.Rebuild(ctx); err != nil {
		// The server still starts; search returns no hits until the
		// next rebuild succeeds.
		log.Printf("Initial search index build failed: %v", err)
	}
	metrics.SetSearchIndexSize(index.Size())
	go index.Run(ctx, cfg.SearchRebuildInterval)
	go trackIndexSize(ctx, index)

	handler := httpapi.NewHandler(dbClient, index, httpapi.Config{
		LatestPostsLimit: cfg.LatestPostsLimit,
	})
	router := mux.NewRouter()
	handler.Register(router)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, time.Minute)
	cors := middleware.NewCORSMiddlewareFromString(cfg.CORSOrigin)

	var root http.Handler = router
	root = metrics.InstrumentHandler(root)
	root = limiter.Handler(root)
	root = cors.Handler(root)
	root = middleware.LoggingMiddleware(root)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("Listening on %s", cfg.Addr())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Printf("Server stopped")
}

func trackIndexSize(ctx context.Context, index *search.Index) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetSearchIndexSize(index.Size())
		}
	}
}
