package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/sajan/nepal-office-tracker/internal/db"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "data", "directory containing scraper output")
	file := flag.String("file", "", "import a specific file instead of the latest")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	source := *file
	if source == "" {
		source, err = db.LatestOutputFile(*dir)
		if err != nil {
			log.Fatal(err)
		}
	}

	store := db.NewStore(pool)
	log.Printf("Loading data from: %s", source)
	stats, err := store.ImportOutputFile(ctx, source)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Imported %d offices (%d services), skipped %d existing", stats.Imported, stats.Services, stats.Skipped)
}
