// internal/repository/application_store.go
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/models"
)

// ApplicationStore owns application rows. Every status write goes through a
// transaction that also appends the matching audit entry.
type ApplicationStore struct {
	db    *gorm.DB
	audit *AuditLog
}

// TransitionParams describes one compare-and-transition call.
type TransitionParams struct {
	ApplicationID uint
	From          models.ApplicationStatus
	To            models.ApplicationStatus
	ChangedByID   uint
	AssigneeID    *uint
	Reason        *string
}

// ListFilter narrows list reads. Nil OwnerID and ApplicantUserID mean no
// scoping.
type ListFilter struct {
	ApplicantUserID *uint
	OwnerID         *uint
	Statuses        []models.ApplicationStatus
	Offset          int
	Limit           int
}

func NewApplicationStore(db *gorm.DB, audit *AuditLog) *ApplicationStore {
	return &ApplicationStore{db: db, audit: audit}
}

// Create inserts app with status APPLIED and its creation audit entry in one
// transaction. The (job_id, candidate_id) unique index decides duplicates.
func (s *ApplicationStore) Create(ctx context.Context, app *models.Application, changedByID uint) (*models.StatusHistory, error) {
	app.ID = 0
	app.Status = models.StatusApplied

	var entry *models.StatusHistory
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(app).Error; err != nil {
			if IsUniqueViolation(err) {
				return apperror.Wrap(apperror.KindDuplicate, "an application for this job already exists", err)
			}
			return apperror.Internal("failed to create application", err)
		}

		entry = &models.StatusHistory{
			ApplicationID: app.ID,
			ToStatus:      app.Status,
			ChangedByID:   changedByID,
			Reason:        app.Reason,
		}
		return s.audit.Append(tx, entry)
	})
	if err != nil {
		app.ID = 0
		return nil, asAppError("failed to commit application", err)
	}
	return entry, nil
}

func (s *ApplicationStore) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "application not found")
		}
		return nil, apperror.Internal("failed to load application", err)
	}
	return &app, nil
}

// ExistsForCandidate is an advisory pre-check; Create remains the arbiter.
func (s *ApplicationStore) ExistsForCandidate(ctx context.Context, jobID, candidateID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Count(&count).Error; err != nil {
		return false, apperror.Internal("failed to check existing application", err)
	}
	return count > 0, nil
}

// CompareAndTransition moves the application from p.From to p.To only if its
// stored status still equals p.From, and appends the audit entry in the same
// transaction. A lost race yields STALE_STATE and leaves nothing written.
func (s *ApplicationStore) CompareAndTransition(ctx context.Context, p TransitionParams) (*models.Application, *models.StatusHistory, error) {
	var (
		app   models.Application
		entry *models.StatusHistory
	)

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": p.To}
		if p.AssigneeID != nil {
			updates["assignee_id"] = *p.AssigneeID
		}
		if p.Reason != nil {
			updates["reason"] = *p.Reason
		}

		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", p.ApplicationID, p.From).
			Updates(updates)
		if res.Error != nil {
			return apperror.Internal("failed to update application status", res.Error)
		}
		if res.RowsAffected == 0 {
			return s.missingOrStale(tx, p.ApplicationID)
		}

		entry = &models.StatusHistory{
			ApplicationID: p.ApplicationID,
			FromStatus:    p.From.Ptr(),
			ToStatus:      p.To,
			ChangedByID:   p.ChangedByID,
			Reason:        p.Reason,
		}
		if err := s.audit.Append(tx, entry); err != nil {
			return err
		}

		if err := tx.First(&app, p.ApplicationID).Error; err != nil {
			return apperror.Internal("failed to reload application", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, asAppError("failed to commit status transition", err)
	}
	return &app, entry, nil
}

func (s *ApplicationStore) missingOrStale(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Application{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperror.Internal("failed to re-read application", err)
	}
	if count == 0 {
		return apperror.New(apperror.KindNotFound, "application not found")
	}
	return apperror.New(apperror.KindStaleState, "application status changed before this transition committed")
}

// List returns applications newest first, with job and candidate preloaded,
// and the total count ignoring paging.
func (s *ApplicationStore) List(ctx context.Context, f ListFilter) ([]models.Application, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Application{})
	if f.ApplicantUserID != nil {
		query = query.Where("applicant_user_id = ?", *f.ApplicantUserID)
	}
	if f.OwnerID != nil {
		query = query.Where("job_id IN (?)",
			s.db.Model(&models.JobOwner{}).Select("job_id").Where("owner_id = ?", *f.OwnerID))
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("failed to count applications", err)
	}

	var apps []models.Application
	page := query.
		Preload("Job", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Candidate").
		Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		page = page.Offset(f.Offset).Limit(f.Limit)
	}
	if err := page.Find(&apps).Error; err != nil {
		return nil, 0, apperror.Internal("failed to list applications", err)
	}
	return apps, total, nil
}
