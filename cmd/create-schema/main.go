package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"genuverity-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	reset := flag.Bool("reset", false, "drop existing tables before creating them (development only)")
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

	// Enable pgvector extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	if *reset {
		for _, table := range []string{"uploads", "api_keys", "fact_check_results"} {
			if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
				log.Fatalf("Failed to drop %s: %v", table, err)
			}
		}
		log.Println("✓ Dropped existing tables")
	}

	tables := []struct {
		name string
		sql  string
	}{
		{
			name: "fact_check_results",
			sql: `
CREATE TABLE IF NOT EXISTS fact_check_results (
    id VARCHAR(128) PRIMARY KEY,
    fingerprint CHAR(16) NOT NULL,
    claim TEXT NOT NULL,
    verdict VARCHAR(16) NOT NULL CHECK (verdict IN ('TRUE', 'FALSE', 'MIXED', 'UNVERIFIABLE')),

    -- Serialized result, written once per version
    payload JSONB NOT NULL,

    embedding vector(768),
    embedding_model VARCHAR(100),

    created_at TIMESTAMPTZ NOT NULL,
    cached_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    refresh_count INTEGER NOT NULL DEFAULT 0
);`,
		},
		{
			name: "api_keys",
			sql: `
CREATE TABLE IF NOT EXISTS api_keys (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    prefix CHAR(8) NOT NULL UNIQUE,
    key_hash TEXT NOT NULL,
    tier VARCHAR(20) NOT NULL CHECK (tier IN ('authenticated', 'enterprise')),
    owner TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked_at TIMESTAMPTZ
);`,
		},
		{
			name: "uploads",
			sql: `
CREATE TABLE IF NOT EXISTS uploads (
    id UUID PRIMARY KEY,
    api_key_id UUID REFERENCES api_keys(id) ON DELETE SET NULL,
    result_id VARCHAR(128) NOT NULL,
    filename TEXT NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
		},
	}

	for _, t := range tables {
		if _, err := pool.Exec(ctx, t.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", t.name, err)
		}
		log.Printf("✓ Created %s table", t.name)
	}

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Vector similarity search (HNSW)",
			sql: `CREATE INDEX IF NOT EXISTS idx_results_embedding_hnsw ON fact_check_results
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
		},
		{
			name: "Embedding model filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_results_embedding_model ON fact_check_results(embedding_model);",
		},
		{
			name: "Fingerprint lookup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_results_fingerprint ON fact_check_results(fingerprint);",
		},
		{
			name: "Uploads by result",
			sql:  "CREATE INDEX IF NOT EXISTS idx_uploads_result_id ON uploads(result_id);",
		},
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Tables: fact_check_results, api_keys, uploads")
	fmt.Printf("   Indexes: %d\n", len(indexes))
}
