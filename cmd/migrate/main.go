package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/database"
	"bookcatalog/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the book catalog database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres DSN (defaults to DB_DSN)")

	for _, c := range []struct {
		cmd   database.MigrateCommand
		short string
	}{
		{database.MigrateUp, "Apply all pending migrations"},
		{database.MigrateDown, "Roll back the most recent migration"},
		{database.MigrateStatus, "Print the status of every migration"},
	} {
		migrateCmd := c.cmd
		root.AddCommand(&cobra.Command{
			Use:   string(migrateCmd),
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd.Context(), dsn, migrateCmd)
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration in MIGRATIONS_DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return createMigration(migrationsDir(), args[0])
		},
	})

	return root
}

func runMigration(ctx context.Context, dsnFlag string, command database.MigrateCommand) error {
	loadEnvFiles()
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pool, err := database.Open(ctx, resolveDSN(dsnFlag, cfg), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, command, log); err != nil {
		return err
	}
	log.Info("migration command finished", zap.String("command", string(command)))
	return nil
}

func createMigration(dir, name string) error {
	if name == "" {
		return errors.New("name is required for 'create' command")
	}
	goose.SetBaseFS(nil)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	return nil
}
