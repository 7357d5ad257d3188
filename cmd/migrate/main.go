package main

import (
	"context"
	"log"
	"os"
	"time"

	"hypotest/adapters/sqlstore"
	"hypotest/internal/config"

	"github.com/joho/godotenv"
)

// migrate brings the result metadata schema up to date without starting the server.
//
// Usage: migrate [driver] [database_url]
// Both arguments default to DATABASE_DRIVER and DATABASE_URL.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	driver := os.Getenv("DATABASE_DRIVER")
	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		driver = os.Args[1]
	}
	if len(os.Args) > 2 {
		databaseURL = os.Args[2]
	}
	if driver == config.DriverFile || databaseURL == "" {
		log.Fatal("Usage: migrate <sqlite|postgres> <database_url>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Printf("Migrating %s database", driver)
	db, err := sqlstore.Open(ctx, driver, databaseURL)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	log.Println("Migration complete")
}
