package main

import (
	"os"

	"bookcatalog/internal/config"
)

func loadEnvFiles() {
	config.LoadEnvFiles()
}

// migrationsDir is where `create` writes new files. Applying migrations
// always uses the set embedded in the binary.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}

// resolveDSN prefers the --dsn flag over configuration.
func resolveDSN(flagValue string, cfg config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.DatabaseDSN
}
