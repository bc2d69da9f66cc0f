package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"suitup-be/internal/db"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// migrator is the subset of *migrate.Migrate the command drives.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
}

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up, down or version")
	dir := flag.String("dir", "./migrations", "directory holding the migration files")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer conn.Close()

	m, err := db.NewMigrator(conn, *dir)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	if err := run(m, *mode, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(m migrator, mode string, out io.Writer) error {
	switch mode {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Fprintln(out, "No new migrations to apply.")
				return nil
			}
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintln(out, "All new migrations applied successfully.")
	case "down":
		// Roll back only the latest migration.
		if err := m.Steps(-1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No migrations to roll back.")
				return nil
			}
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Fprintln(out, "Rollback successful.")
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "No migrations applied.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read version: %w", err)
		}
		fmt.Fprintf(out, "version %d (dirty: %t)\n", v, dirty)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'version')", mode)
	}
	return nil
}
