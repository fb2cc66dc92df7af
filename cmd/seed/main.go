package main

import (
	"context"
	"flag"
	"log"
	"time"

	"decryptrace/internal/catalog"
	"decryptrace/internal/config"
	"decryptrace/internal/repository"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	force := flag.Bool("force", false, "replace a non-empty message pool")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	messages := repository.NewMessageRepo(db)
	n, err := messages.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count messages: %v", err)
	}
	if n > 0 && !*force {
		log.Printf("Pool already has %d messages, use -force to replace them", n)
		return
	}

	pool := catalog.SeedMessages()
	if err := messages.Reseed(ctx, pool); err != nil {
		log.Fatalf("Failed to seed messages: %v", err)
	}

	log.Printf("Seeded %d messages into %s.%s", len(pool), cfg.MongoDB, repository.MessageCollection)
}
