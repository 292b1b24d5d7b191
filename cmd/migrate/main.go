package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/calmora/billing-webhooks/config"
)

// Applies the schema migrations under migrations/ to the configured
// database. Run it before the api on a fresh database.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	path := flag.String("path", "migrations", "directory holding the migration files")
	flag.Parse()

	if err := run(logger, *path, *down); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, path string, down bool) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving migrations path: %w", err)
	}

	runner, err := migrate.New("file://"+filepath.ToSlash(absPath), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("initializing migration runner: %w", err)
	}
	defer func() {
		sourceErr, dbErr := runner.Close()
		if sourceErr != nil {
			logger.Warn("closing migration source", "error", sourceErr)
		}
		if dbErr != nil {
			logger.Warn("closing migration database", "error", dbErr)
		}
	}()

	if down {
		err = runner.Down()
	} else {
		err = runner.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("migrations applied", "path", absPath, "down", down)
	return nil
}
