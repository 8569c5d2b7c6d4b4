package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/testutil"
)

func TestWithTransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	boom := errors.New("boom")

	err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&models.User{Email: "ghost@hirehub.local", PasswordHash: "x", Role: models.RoleHR}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)
	assert.NoError(t, database.RunMigrations(db))
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	summary, err := database.Seed(ctx, db)
	require.NoError(t, err)
	assert.False(t, summary.Skipped)
	assert.Equal(t, 4, summary.UsersCreated)
	assert.Equal(t, 5, summary.JobsCreated)

	var farseer models.User
	require.NoError(t, db.Where("email = ?", "farseer@hirehub.local").First(&farseer).Error)
	assert.Equal(t, models.RoleHR, farseer.Role)
	assert.NoError(t, farseer.CheckPassword("SpiritWolf123!"))

	var owned int64
	require.NoError(t, db.Model(&models.JobOwner{}).Where("owner_id = ?", farseer.ID).Count(&owned).Error)
	assert.EqualValues(t, 5, owned)

	var candidates int64
	require.NoError(t, db.Model(&models.Candidate{}).Where("user_id IS NOT NULL").Count(&candidates).Error)
	assert.EqualValues(t, 2, candidates)

	again, err := database.Seed(ctx, db)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Zero(t, again.UsersCreated)
}
