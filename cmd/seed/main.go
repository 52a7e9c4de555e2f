package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/config"
	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/seed"
)

func main() {
	var (
		file       = flag.String("file", "data/sample_posts.json", "Path to the JSON seed file")
		mongoURI   = flag.String("mongo-uri", "", "MongoDB connection string (defaults to MONGODB_URI)")
		dbName     = flag.String("db", "", "MongoDB database name (defaults to MONGODB_DB)")
		collection = flag.String("collection", "", "MongoDB collection name (defaults to MONGODB_COLLECTION)")
		drop       = flag.Bool("drop", false, "Drop the collection before seeding")
		envFile    = flag.String("env", "", "Optional .env file to load before reading the environment")
	)
	flag.Parse()

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

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open seed file: %v", err)
	}
	posts, err := seed.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load seed file %s: %v", *file, err)
	}
	log.Printf("Loaded %d posts from %s", len(posts), *file)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbClient := db.NewClient(*mongoURI, *dbName, *collection)
	if err := dbClient.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close(context.Background())

	if *drop {
		if err := dbClient.Drop(ctx); err != nil {
			log.Fatalf("Failed to drop collection: %v", err)
		}
		log.Printf("Dropped collection %s.%s", *dbName, *collection)
	}

	report, err := seed.Run(ctx, dbClient, posts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeding done: %d inserted, %d updated, %d total", report.Inserted, report.Updated, report.Total)
}
