package main

import (
	"context"
	"flag"
	"log"

	"hirefeed/internal/config"
	"hirefeed/internal/database"
	"hirefeed/internal/database/schema"
	"hirefeed/internal/database/schema/migrations"

	"go.uber.org/zap"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back the most recently applied migration")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, database.SQLiteOptions{
		Path:  cfg.DatabasePath,
		Debug: cfg.LogLevel == "debug",
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db, logger)

	if *rollback {
		rollbackLatest(ctx, migrator, logger)
		return
	}

	applied, err := migrator.Migrate(ctx, migrations.All)
	if err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	logger.Info("All migrations completed successfully",
		zap.String("database", cfg.DatabasePath),
		zap.Int("applied", applied))
}

func rollbackLatest(ctx context.Context, migrator *schema.Migrator, logger *zap.Logger) {
	if err := migrator.CreateMigrationsTable(ctx); err != nil {
		logger.Fatal("Failed to create migrations table", zap.Error(err))
	}

	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("Failed to get applied migrations", zap.Error(err))
	}

	for i := len(migrations.All) - 1; i >= 0; i-- {
		migration := migrations.All[i]
		if _, ok := applied[migration.Version]; !ok {
			continue
		}

		logger.Info("Rolling back migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))

		if err := migrator.RollbackMigration(ctx, migration); err != nil {
			logger.Fatal("Failed to roll back migration",
				zap.Int("version", migration.Version),
				zap.Error(err))
		}

		logger.Info("Successfully rolled back migration", zap.Int("version", migration.Version))
		return
	}

	logger.Info("No applied migrations to roll back")
}
