package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go-commerce-core/internal/config"
	"go-commerce-core/internal/repository"
	"go-commerce-core/internal/service"
	"go-commerce-core/pkg/database"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
)

func main() {
	seed := flag.Bool("seed", false, "seed default order statuses and availability rules")
	purgeAfter := flag.Duration("purge-drafts", 0, "delete product drafts older than this duration (e.g. 72h)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Get()
	appLogger := cfg.NewLogger()
	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", gecho.Field("error", err))
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect database", gecho.Field("error", err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		appLogger.Fatal("Failed to migrate database", gecho.Field("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *seed {
		if err := repository.NewStatusRepo(db).SeedDefaults(ctx); err != nil {
			appLogger.Fatal("Failed to seed order statuses", gecho.Field("error", err))
		}
		if err := repository.NewAvailabilityRepo(db).SeedDefaults(ctx); err != nil {
			appLogger.Fatal("Failed to seed availability rules", gecho.Field("error", err))
		}
		appLogger.Info("Default order statuses and availability rules seeded")
	}

	if *purgeAfter > 0 {
		products := service.NewProductService(repository.NewProductRepo(db), db, nil, appLogger)
		deleted, err := products.PurgeStaleDrafts(ctx, *purgeAfter)
		if err != nil {
			appLogger.Fatal("Failed to purge drafts", gecho.Field("error", err))
		}
		appLogger.Info("Stale drafts purged", gecho.Field("deleted", deleted), gecho.Field("older_than", purgeAfter.String()))
	}

	if !*seed && *purgeAfter == 0 {
		flag.Usage()
	}
}
