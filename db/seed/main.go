package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/pkg/database"
)

func main() {
	_ = godotenv.Load()

	cfg := environments.Load()

	db, err := database.NewSnowflakeDB(cfg.Snowflake)
	if err != nil {
		log.Fatalf("Failed to connect to Snowflake: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.SeedTestData(db); err != nil {
		log.Fatalf("Failed to seed test data: %v", err)
	}

	log.Println("Seed completed successfully")
}
