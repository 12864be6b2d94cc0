package main

import (
	"context"
	"log"
	"os"
	"time"

	"latthi-storefront/internal/config"
	"latthi-storefront/internal/db"
	"latthi-storefront/internal/seed"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		logger.Fatalf("seeding the memory store has no effect, set STORE_DRIVER")
	}

	ctx := context.Background()
	store, closeStore, err := db.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer closeStore()

	if err := seed.Apply(ctx, store, time.Now()); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
