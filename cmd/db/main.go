package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"zipcodes/internal/dataset"
	"zipcodes/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := flag.String("db", getDBPath(), "Path to the SQLite database to write")
	flag.Parse()

	log.Printf("Exporting zipcodes to: %s\n", *dbPath)

	records, err := dataset.Load()
	if err != nil {
		log.Fatalf("Failed to load zipcode dataset: %v", err)
	}

	db, err := store.InitDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Println("Creating tables...")
	if err := store.CreateSchema(db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	log.Printf("Inserting %d records...", len(records))
	if err := store.InsertRecords(db, records); err != nil {
		log.Fatalf("Failed to insert records: %v", err)
	}

	count, err := store.CountRecords(db)
	if err != nil {
		log.Fatalf("Failed to verify export: %v", err)
	}
	log.Printf("Database export completed successfully! (%d zipcodes)", count)
}

func getDBPath() string {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./zipcodes.db"
	}
	return dbPath
}
