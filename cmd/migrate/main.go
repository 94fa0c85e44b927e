package main

import (
	"context"
	"log"
	"time"

	"omni-backend/internal/config"
	"omni-backend/pkg/database"
	"omni-backend/pkg/vectorstore/pgvector"
)

// Creates the pgvector extension and both collection tables ahead of the first request.
func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Debug)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	store := pgvector.NewStore(db)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, name := range []string{cfg.Rag.GeneralCollection, cfg.Rag.PersonalCollection} {
		log.Printf("Ensuring collection %s (dim %d)...", name, cfg.Rag.EmbeddingDim)
		if err := store.EnsureCollection(ctx, name, cfg.Rag.EmbeddingDim); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	log.Println("Migration completed.")
}
