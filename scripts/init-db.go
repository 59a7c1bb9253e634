package main

import (
	"flag"
	"log"

	"neuron_backoffice/internal/config"
	"neuron_backoffice/internal/database"
	"neuron_backoffice/internal/logger"
	"neuron_backoffice/internal/migrations"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before migrating")
	flag.Parse()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zlog.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, zlog, false)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if *reset {
		if cfg.IsProduction() {
			zlog.Fatal("refusing to reset a production database")
		}
		if err := migrations.Reset(db, zlog); err != nil {
			zlog.Fatal("failed to drop tables", zap.Error(err))
		}
	}

	// RunMigrations seeds permissions, roles, users and sample tickets.
	if err := migrations.RunMigrations(db, zlog); err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	zlog.Info("database initialization completed",
		zap.String("admin", "admin@neuron.dev"),
		zap.Bool("reset", *reset),
	)
}
