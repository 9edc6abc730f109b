// Command main fills the configured database with demo content.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/observability"
	"inkpost/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Posts per user")
	maxComments := flag.Int("comments", 8, "Maximum comments per post")
	maxDepth := flag.Int("depth", 3, "Maximum reply depth")
	shouldClean := flag.Bool("clean", false, "Remove existing content before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate without writing")
	fast := flag.Bool("fast", false, "Store plaintext passwords instead of bcrypt hashes")
	taxonomyPath := flag.String("taxonomy", "", "YAML file with categories and tags (default: built-in)")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogger(cfg.Env, cfg.LogLevel)
	if cfg.IsProduction() && !*dryRun {
		log.Fatal("Refusing to seed a production database")
	}

	tax, err := loadTaxonomy(*taxonomyPath)
	if err != nil {
		log.Fatalf("Failed to load taxonomy: %v", err)
	}

	ctx := context.Background()
	opts := seed.Options{
		Users:        *numUsers,
		PostsPerUser: *postsPerUser,
		MaxComments:  *maxComments,
		MaxDepth:     *maxDepth,
		BcryptCost:   cfg.BcryptCost,
		SkipBcrypt:   *fast,
		DryRun:       *dryRun,
		RandSeed:     *randSeed,
	}

	if *dryRun {
		if _, err := seed.Seed(ctx, nil, tax, opts); err != nil {
			log.Fatalf("Dry run failed: %v", err)
		}
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if *shouldClean {
		if err := seed.ClearAll(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := seed.Seed(ctx, db, tax, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}

func loadTaxonomy(path string) (*seed.Taxonomy, error) {
	if path == "" {
		return seed.DefaultTaxonomy()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.ParseTaxonomy(raw)
}
