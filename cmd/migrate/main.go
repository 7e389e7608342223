package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/database"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Drop the preference tables")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if *rollback {
		if err := database.RollbackMigrations(db); err != nil {
			log.Fatalf("failed to roll back: %v", err)
		}
		fmt.Println("Successfully rolled back preference tables")
		return
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	fmt.Println("All migrations applied successfully.")
}
