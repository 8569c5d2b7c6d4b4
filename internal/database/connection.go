// internal/database/connection.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/models"
)

// Initialize opens the PostgreSQL pool. The handle is returned to the caller
// and passed explicitly to every store; nothing here keeps a package-level copy.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Database connection established")
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Candidate{},
		&models.Job{},
		&models.JobOwner{},
		&models.Application{},
		&models.StatusHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := protectStatusHistory(db); err != nil {
		return fmt.Errorf("failed to protect status history: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_applications_status_created ON applications(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_applications_candidate_created ON applications(candidate_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_status_histories_chain ON status_histories(application_id, created_at, id)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at DESC)",
	}

	if db.Dialector.Name() == "postgres" {
		indexes = append(indexes,
			"CREATE INDEX IF NOT EXISTS idx_jobs_search ON jobs USING GIN(to_tsvector('english', title || ' ' || company || ' ' || location))",
		)
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}

	return nil
}

// protectStatusHistory installs a storage-level guard so that no code path,
// including raw SQL, can rewrite or remove an audit entry.
func protectStatusHistory(db *gorm.DB) error {
	var statements []string
	switch db.Dialector.Name() {
	case "postgres":
		statements = []string{
			`CREATE OR REPLACE FUNCTION forbid_status_history_mutation() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'status_histories is append-only';
END;
$$ LANGUAGE plpgsql`,
			"DROP TRIGGER IF EXISTS status_histories_append_only ON status_histories",
			"CREATE TRIGGER status_histories_append_only BEFORE UPDATE OR DELETE ON status_histories FOR EACH ROW EXECUTE FUNCTION forbid_status_history_mutation()",
		}
	case "sqlite":
		statements = []string{
			"CREATE TRIGGER IF NOT EXISTS status_histories_no_update BEFORE UPDATE ON status_histories BEGIN SELECT RAISE(ABORT, 'status_histories is append-only'); END",
			"CREATE TRIGGER IF NOT EXISTS status_histories_no_delete BEFORE DELETE ON status_histories BEGIN SELECT RAISE(ABORT, 'status_histories is append-only'); END",
		}
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// WithTransaction runs fn inside a single database transaction bound to ctx.
// fn must do all of its work through the tx it is given.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
