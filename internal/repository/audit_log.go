// internal/repository/audit_log.go
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/models"
)

// AuditLog is the append-only status history ledger. It has no update or
// delete operation.
type AuditLog struct {
	db *gorm.DB
}

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db}
}

// Append writes entry through tx. It must be called with the transaction that
// carries the matching application status write.
func (l *AuditLog) Append(tx *gorm.DB, entry *models.StatusHistory) error {
	if entry.ID != 0 {
		return apperror.Internal("refusing to re-append status history entry", models.ErrHistoryImmutable)
	}
	if !entry.ToStatus.Valid() {
		return apperror.New(apperror.KindInvalidInput, "history entry has an unknown target status")
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperror.Internal("failed to append status history", err)
	}
	return nil
}

// Chain returns the audit entries of one application in creation order, ties
// broken by insertion order.
func (l *AuditLog) Chain(ctx context.Context, applicationID uint) ([]models.StatusHistory, error) {
	var entries []models.StatusHistory
	if err := l.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, apperror.Internal("failed to load status history", err)
	}
	return entries, nil
}
