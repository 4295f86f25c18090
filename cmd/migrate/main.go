// Command migrate applies the SQL migrations under migrations/ to the
// database named by DATABASE_URL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pulsekit/pulse/internal/env"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying")
	flag.Parse()

	env.Load()

	databaseURL, exists, err := env.Lookup("DATABASE_URL")
	if err != nil {
		log.Fatalf("DATABASE_URL: %v", err)
	}
	if !exists || databaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	migrationsPath, err := env.String("MIGRATIONS_PATH", "migrations").Get()
	if err != nil {
		log.Fatalf("MIGRATIONS_PATH: %v", err)
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Println("Migrations applied successfully!")
}
