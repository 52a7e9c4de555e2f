package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.MongoDatabase != "wanderlust" {
		t.Errorf("Expected default database wanderlust, got %s", cfg.MongoDatabase)
	}
	if cfg.MongoCollection != "posts" {
		t.Errorf("Expected default collection posts, got %s", cfg.MongoCollection)
	}
	if cfg.CORSOrigin != "http://localhost:5173" {
		t.Errorf("Expected default CORS origin http://localhost:5173, got %s", cfg.CORSOrigin)
	}
	if cfg.Addr() != ":5000" {
		t.Errorf("Expected addr :5000, got %s", cfg.Addr())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
	t.Setenv("CORS_ORIGIN", "https://blog.example.com")
	t.Setenv("LATEST_POSTS_LIMIT", "12")
	t.Setenv("SEARCH_REBUILD_INTERVAL", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.MongoURI != "mongodb://mongo:27017" {
		t.Errorf("Expected overridden Mongo URI, got %s", cfg.MongoURI)
	}
	if cfg.CORSOrigin != "https://blog.example.com" {
		t.Errorf("Expected overridden CORS origin, got %s", cfg.CORSOrigin)
	}
	if cfg.LatestPostsLimit != 12 {
		t.Errorf("Expected latest posts limit 12, got %d", cfg.LatestPostsLimit)
	}
	if cfg.SearchRebuildInterval != 30*time.Second {
		t.Errorf("Expected rebuild interval 30s, got %s", cfg.SearchRebuildInterval)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LATEST_POSTS_LIMIT", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("SEARCH_REBUILD_INTERVAL", "soon")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LatestPostsLimit != 5 {
		t.Errorf("Expected fallback latest limit 5, got %d", cfg.LatestPostsLimit)
	}
	if cfg.RateLimitBurst != 50 {
		t.Errorf("Expected fallback burst 50, got %d", cfg.RateLimitBurst)
	}
	if cfg.SearchRebuildInterval != 5*time.Minute {
		t.Errorf("Expected fallback rebuild interval 5m, got %s", cfg.SearchRebuildInterval)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	if _, err := Load("does-not-exist.env"); err != nil {
		t.Fatalf("Expected missing env file to be ignored, got: %v", err)
	}
}
