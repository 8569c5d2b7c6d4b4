// cmd/seed/main.go
package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := logger.Setup(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	summary, err := database.Seed(context.Background(), db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to seed database")
	}

	logrus.WithFields(logrus.Fields{
		"users_created": summary.UsersCreated,
		"jobs_created":  summary.JobsCreated,
	}).Info("Seed complete")
}
