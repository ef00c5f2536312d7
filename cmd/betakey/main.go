// Command betakey mints beta access keys. It runs out of the request path
// and needs direct database access.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/playsignal/feedback-api/internal/config"
	"github.com/playsignal/feedback-api/internal/repository/postgres"
	"github.com/playsignal/feedback-api/internal/service"
)

func main() {
	maxUses := flag.Int("uses", 1, "maximum number of times the key can be consumed")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "how long the key stays valid")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required to create beta keys")
	}
	if *maxUses < 1 {
		log.Fatal("-uses must be at least 1")
	}

	db, err := config.NewDatabase(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	betaService := service.NewBetaAccessService(postgres.NewPostgresRepository(db))

	expiresAt := time.Now().Add(*ttl)
	plaintext, key, err := betaService.Create(context.Background(), *maxUses, expiresAt)
	if err != nil {
		log.Fatalf("Failed to create beta key: %v", err)
	}

	fmt.Printf("Beta access key created (shown once, store it now):\n\n")
	fmt.Printf("  %s\n\n", plaintext)
	fmt.Printf("id:       %s\n", key.ID)
	fmt.Printf("prefix:   %s\n", key.KeyPrefix)
	fmt.Printf("max uses: %d\n", key.MaxUses)
	fmt.Printf("expires:  %s\n", expiresAt.Format(time.RFC3339))
}
