// sweeper periodically deletes expired session rows, both active sessions past
// their refresh TTL and tombstones whose reuse-detection window has closed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetbase/backend/internal/config"
	"assetbase/backend/internal/db"
	sessionrepo "assetbase/backend/internal/session/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("sweeper: DATABASE_URL is required")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	sessions := sessionrepo.NewPostgresRepository(database)
	interval := cfg.SweepEvery()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("sweeper: shutting down...")
		cancel()
	}()

	log.Printf("sweeper: deleting expired sessions every %s", interval)
	sweep(ctx, sessions)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			sweep(ctx, sessions)
		}
	}
}

func sweep(ctx context.Context, sessions *sessionrepo.PostgresRepository) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	n, err := sessions.DeleteExpired(sweepCtx, time.Now().UTC())
	if err != nil {
		log.Printf("sweeper: delete expired: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweeper: deleted %d expired sessions", n)
	}
}
