package main

import (
	"context"
	"flag"
	"log"
	"time"

	"genuverity-backend/config"
	"genuverity-backend/repository"
	"genuverity-backend/service"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"
)

func main() {
	batchSize := flag.Int("batch", 100, "results fetched per batch")
	pause := flag.Duration("pause", 2*time.Second, "pause between batches when calling the embedding API")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Verify table exists
	var tableExists bool
	err = pool.QueryRow(ctx, "SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'fact_check_results')").Scan(&tableExists)
	if err != nil {
		log.Fatalf("Failed to check table existence: %v", err)
	}
	if !tableExists {
		log.Fatal("fact_check_results table does not exist. Please run: go run ./cmd/create-schema")
	}

	var embedder service.Embedder = service.NewHashEmbedder()
	remote := cfg.Gemini.Live()
	if remote {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer client.Close()
		embedder = service.NewGeminiEmbedder(client, cfg.Gemini.EmbeddingModel)
	}
	log.Printf("Embedding model: %s", embedder.Model())

	repo := repository.NewFactCheckRepository(pool)
	var updated, failed int
	for {
		targets, err := repo.ListMissingEmbeddings(ctx, embedder.Model(), *batchSize)
		if err != nil {
			log.Fatalf("Failed to list results: %v", err)
		}
		if len(targets) == 0 {
			break
		}

		progressed := false
		for _, t := range targets {
			vec, err := embedder.Embed(ctx, t.Claim)
			if err != nil {
				log.Printf("   ❌ %s: %v", t.ID, err)
				failed++
				continue
			}
			if service.IsZeroVector(vec) {
				log.Printf("   ⚠️  %s: claim has no content words, skipping", t.ID)
				failed++
				continue
			}
			if err := repo.UpdateEmbedding(ctx, t.ID, vec, embedder.Model()); err != nil {
				log.Printf("   ❌ %s: %v", t.ID, err)
				failed++
				continue
			}
			progressed = true
			updated++
		}
		log.Printf("   ✓ Embedded %d results so far", updated)

		if !progressed {
			// every remaining target keeps failing; stop instead of looping forever
			break
		}
		if remote {
			time.Sleep(*pause)
		}
	}

	log.Printf("\n✅ Embedding build complete! updated=%d failed=%d", updated, failed)
}
