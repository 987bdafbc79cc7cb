package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/footage_api/seed/seeders"
	"github.com/lac-hong-legacy/footage_api/services"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, videos, subscriptions")
		dbPath   = flag.String("db", "", "Database path (overrides DB_NAME env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_NAME")
		if databasePath == "" {
			databasePath = "footage.db"
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := services.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.WithField("db", databasePath).Info("Connected to database")

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		err = mainSeeder.SeedAll()
	case "videos":
		err = mainSeeder.SeedVideosOnly()
	case "subscriptions":
		err = mainSeeder.SeedSubscriptionsOnly()
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'videos' or 'subscriptions'", *seedType)
	}
	if err != nil {
		log.Fatalf("Failed to seed %s: %v", *seedType, err)
	}

	log.Info("Seeding operation completed successfully")
}

func showHelp() {
	fmt.Println(`
Database seeding tool for the footage API

Usage: go run ./seed [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, videos, subscriptions
  -db string
        Database path (overrides DB_NAME environment variable)
  -help
        Show this help message

Examples:
  go run ./seed
  go run ./seed -type=subscriptions -db=./dev.db

Environment Variables:
  DB_NAME - Default database path (default: footage.db)`)
}
