package cmd

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationsTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := readConfig(configDir)
	if err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	lg := setupLogger(cfg)

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetTableName(migrationsTable)
	goose.SetLogger(goose.NopLogger())

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	lg.Info("migrations applied", "command", command, "dir", migrateDir, "version", version)
	return nil
}
