package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"genuverity-backend/config"
	"genuverity-backend/models"
	"genuverity-backend/repository"
	"genuverity-backend/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	tier := flag.String("tier", string(models.TierAuthenticated), "key tier: authenticated or enterprise")
	owner := flag.String("owner", "", "who the key is issued to")
	revoke := flag.String("revoke", "", "revoke the key with this 8-character prefix instead of issuing one")
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

	repo := repository.NewAPIKeyRepository(pool)

	if *revoke != "" {
		if err := repo.Revoke(ctx, *revoke); err != nil {
			log.Fatalf("Failed to revoke key %s: %v", *revoke, err)
		}
		fmt.Printf("✅ Key %s revoked\n", *revoke)
		return
	}

	if *owner == "" {
		log.Fatal("-owner is required")
	}

	raw, key, err := service.NewAPIKeyService(repo).Issue(ctx, models.Tier(*tier), *owner)
	if err != nil {
		log.Fatalf("Failed to issue key: %v", err)
	}

	fmt.Printf("✅ API key created successfully!\n")
	fmt.Printf("   ID: %s\n", key.ID)
	fmt.Printf("   Tier: %s\n", key.Tier)
	fmt.Printf("   Owner: %s\n", key.Owner)
	fmt.Printf("   Key: %s\n", raw)
	fmt.Println("   Store the key now; only its hash is kept.")
}
