package main

import (
	"context"
	"os"
	"time"

	"projecthub/internal/config"
	"projecthub/internal/infra/cache"
	"projecthub/internal/rbac"
	"projecthub/internal/repository/postgres"
	"projecthub/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	schemaPath   = "database/schema.sql"
	setupTimeout = time.Minute
)

var tables = []string{
	"users", "refresh_tokens", "roles", "projects", "project_members",
	"tasks", "task_assignees", "labels", "task_labels", "comments", "time_logs",
	"activity_logs",
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logrus.WithError(err).Warn("error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.Log.Level, logger.FormatText)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		log.WithError(err).Fatal("failed to read schema file")
	}
	if _, err := db.SQL.ExecContext(ctx, string(schema)); err != nil {
		log.WithError(err).Fatal("failed to execute schema")
	}
	log.Info("schema executed")

	for _, table := range tables {
		var exists bool
		err := db.SQL.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, table).Scan(&exists)
		entry := log.WithField("table", table)
		switch {
		case err != nil:
			entry.WithError(err).Error("failed to check table")
		case !exists:
			entry.Error("table not created")
		default:
			entry.Info("table ready")
		}
	}

	catalog := rbac.NewCatalog(
		postgres.NewRoleRepository(db),
		cache.NewLocalRoleCache(cfg.Cache.Size, cfg.Cache.TTL),
		log,
		nil,
	)
	if err := catalog.SeedDefaults(ctx); err != nil {
		log.WithError(err).Fatal("failed to seed built-in roles")
	}
	log.Info("database setup complete")
}
