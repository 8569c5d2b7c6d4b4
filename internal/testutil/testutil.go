// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/models"
)

// NewDB returns a migrated in-memory SQLite database. A single connection is
// used so the in-memory database is shared by every caller and writers are
// serialized the way row locks serialize them on PostgreSQL.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	logrus.SetLevel(logrus.WarnLevel)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email: fmt.Sprintf("%s-%s@hirehub.local", role, uuid.NewString()[:8]),
		Name:  string(role) + " user",
		Role:  role,
	}
	require.NoError(t, user.SetPassword("Passw0rd!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCandidate creates a CANDIDATE user together with its profile.
func CreateCandidate(t testing.TB, db *gorm.DB) (*models.User, *models.Candidate) {
	t.Helper()
	user := CreateUser(t, db, models.RoleCandidate)
	candidate := &models.Candidate{
		UserID:   &user.ID,
		FullName: user.Name,
		Email:    user.Email,
	}
	require.NoError(t, db.Create(candidate).Error)
	return user, candidate
}

// CreateJob creates a job owned by ownerID.
func CreateJob(t testing.TB, db *gorm.DB, ownerID uint) *models.Job {
	t.Helper()
	job := &models.Job{
		ExternalID: uuid.NewString(),
		Title:      "Backend Engineer",
		Company:    "Stormwind Labs",
		Location:   "Chicago, US",
	}
	require.NoError(t, db.Create(job).Error)
	require.NoError(t, db.Create(&models.JobOwner{JobID: job.ID, OwnerID: ownerID}).Error)
	return job
}
