package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/zfogg/cadence/internal/auth"
	"github.com/zfogg/cadence/internal/config"
	"github.com/zfogg/cadence/internal/database"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/repository"
	"github.com/zfogg/cadence/internal/seed"
)

func main() {
	// Parse command
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev(seed.DefaultOptions())
	case "test":
		opts := seed.DefaultOptions()
		opts.Users, opts.Songs, opts.Views, opts.Likes = 3, 25, 20, 10
		seedDev(opts)
	case "clean":
		cleanSeed()
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with a large catalog")
		fmt.Println("  test  - Seed test database with minimal data")
		fmt.Println("  clean - Remove all seed data (use with caution)")
		os.Exit(1)
	}
}

func connect() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(logger.Options{Level: cfg.LogLevel, Console: true}); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}

	if err := database.Initialize(cfg.Database, false); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	log.Println("✅ Database connected")
	return cfg
}

func seedDev(opts seed.Options) {
	log.Println("🌱 Seeding database...")

	cfg := connect()
	defer database.Close()

	if cfg.Storage.Bucket != "" {
		opts.Bucket = cfg.Storage.Bucket
		opts.Region = cfg.Storage.Region
	}

	ctx := context.Background()
	res, err := seed.NewSeeder(database.DB, time.Now().UnixNano()).SeedDev(ctx, opts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Seeded %d users and %d songs", len(res.Users), len(res.Songs))

	if len(res.Users) > 0 {
		authService := auth.NewService([]byte(cfg.JWTSecret), repository.NewUserRepository(database.DB))
		user := res.Users[0]
		token, expiresAt, err := authService.GenerateToken(&user)
		if err != nil {
			log.Fatalf("❌ Failed to generate token: %v", err)
		}
		log.Printf("🔑 Log in as %s / %s, or use this token (expires %s):", user.Username, seed.DevPassword, expiresAt.Format(time.RFC3339))
		fmt.Println(token)
	}
}

func cleanSeed() {
	log.Println("🧹 Cleaning seed data...")

	connect()
	defer database.Close()

	if err := seed.NewSeeder(database.DB, 0).Clean(context.Background()); err != nil {
		log.Fatalf("❌ Clean failed: %v", err)
	}

	log.Println("✅ Seed data cleaned successfully!")
}
