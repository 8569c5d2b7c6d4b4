// internal/repository/ownership.go
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/models"
)

type OwnershipRepository struct {
	db *gorm.DB
}

func NewOwnershipRepository(db *gorm.DB) *OwnershipRepository {
	return &OwnershipRepository{db: db}
}

// Bind records ownerID as the owner of jobID through tx, so it commits with
// the job row.
func (r *OwnershipRepository) Bind(tx *gorm.DB, jobID, ownerID uint) error {
	if err := tx.Create(&models.JobOwner{JobID: jobID, OwnerID: ownerID}).Error; err != nil {
		if IsUniqueViolation(err) {
			return apperror.Wrap(apperror.KindDuplicate, "job already has an owner", err)
		}
		return apperror.Internal("failed to record job owner", err)
	}
	return nil
}

// OwnerOf returns the actor bound to jobID at creation time.
func (r *OwnershipRepository) OwnerOf(ctx context.Context, jobID uint) (uint, error) {
	var owner models.JobOwner
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.New(apperror.KindNotFound, "job has no owner")
		}
		return 0, apperror.Internal("failed to load job owner", err)
	}
	return owner.OwnerID, nil
}

func (r *OwnershipRepository) JobIDsOwnedBy(ctx context.Context, ownerID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.JobOwner{}).
		Where("owner_id = ?", ownerID).
		Order("job_id ASC").
		Pluck("job_id", &ids).Error; err != nil {
		return nil, apperror.Internal("failed to list owned jobs", err)
	}
	return ids, nil
}
