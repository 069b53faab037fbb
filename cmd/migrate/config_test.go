package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookcatalog/internal/config"
)

func TestMigrationsDir(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")
	assert.Equal(t, "db/migrations", migrationsDir())

	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")
	assert.Equal(t, "/custom/migrations", migrationsDir())
}

func TestResolveDSN(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseDSN = "postgres://from-config"

	assert.Equal(t, "postgres://from-config", resolveDSN("", cfg))
	assert.Equal(t, "postgres://from-flag", resolveDSN("postgres://from-flag", cfg))
}
