// internal/services/job_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

var jobSortFields = []string{"created_at", "posted_at", "title", "company", "location"}

type JobService struct {
	db     *gorm.DB
	owners *repository.OwnershipRepository
}

type CreateJobRequest struct {
	ExternalID  string       `json:"external_id,omitempty" validate:"omitempty,max=255"`
	Title       string       `json:"title" validate:"required,min=2,max=255"`
	Company     string       `json:"company" validate:"required,max=255"`
	Location    string       `json:"location" validate:"required,max=255"`
	Type        string       `json:"type,omitempty" validate:"omitempty,max=50"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty" validate:"omitempty,url"`
	PostedAt    *time.Time   `json:"posted_at,omitempty"`
	Source      string       `json:"source,omitempty" validate:"omitempty,max=50"`
	RawJSON     models.JSONB `json:"raw_json,omitempty"`
}

// UpdateJobRequest changes only the fields present. external_id is fixed at
// creation.
type UpdateJobRequest struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Company     *string      `json:"company,omitempty" validate:"omitempty,min=1,max=255"`
	Location    *string      `json:"location,omitempty" validate:"omitempty,min=1,max=255"`
	Type        *string      `json:"type,omitempty" validate:"omitempty,max=50"`
	Description *string      `json:"description,omitempty"`
	URL         *string      `json:"url,omitempty" validate:"omitempty,url"`
	PostedAt    *time.Time   `json:"posted_at,omitempty"`
	Source      *string      `json:"source,omitempty" validate:"omitempty,max=50"`
	RawJSON     models.JSONB `json:"raw_json,omitempty"`
}

type JobFilters struct {
	Company  string
	Location string
	Type     string
}

func NewJobService(db *gorm.DB, owners *repository.OwnershipRepository) *JobService {
	return &JobService{db: db, owners: owners}
}

// JobExists reports whether a live job with jobID exists.
func (s *JobService) JobExists(ctx context.Context, jobID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).Count(&count).Error; err != nil {
		return false, apperror.Internal("failed to check job", err)
	}
	return count > 0, nil
}

func (s *JobService) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindJobNotFound, "job not found")
		}
		return nil, apperror.Internal("failed to load job", err)
	}
	return &job, nil
}

// ListJobs is the public job board: filters are case-insensitive substring
// matches and search spans title, company and location.
func (s *JobService) ListJobs(ctx context.Context, params utils.PaginationParams, filters JobFilters) ([]models.Job, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Job{})
	query = applyJobFilters(query, params.Search, filters)
	return s.page(query, params, false)
}

// ListMine returns the jobs an actor manages: everything for a Lead, owned
// jobs for HR.
func (s *JobService) ListMine(ctx context.Context, actor models.Actor, params utils.PaginationParams) ([]models.Job, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Job{})
	switch actor.Role {
	case models.RoleLead:
	case models.RoleHR:
		ids, err := s.owners.JobIDsOwnedBy(ctx, actor.ID)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []models.Job{}, 0, nil
		}
		query = query.Where("id IN ?", ids)
	default:
		return nil, 0, apperror.New(apperror.KindForbidden, "only HR or Lead manage jobs")
	}
	return s.page(query, params, true)
}

func (s *JobService) page(query *gorm.DB, params utils.PaginationParams, withOwner bool) ([]models.Job, int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("failed to count jobs", err)
	}

	page := utils.ApplySort(query, params, jobSortFields)
	page = utils.ApplyPagination(page, params)
	if withOwner {
		page = page.Preload("Owner")
	}

	var jobs []models.Job
	if err := page.Find(&jobs).Error; err != nil {
		return nil, 0, apperror.Internal("failed to list jobs", err)
	}
	return jobs, total, nil
}

func applyJobFilters(query *gorm.DB, search string, f JobFilters) *gorm.DB {
	contains := func(v string) string {
		return "%" + strings.ToLower(v) + "%"
	}
	if f.Company != "" {
		query = query.Where("LOWER(company) LIKE ?", contains(f.Company))
	}
	if f.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", contains(f.Location))
	}
	if f.Type != "" {
		query = query.Where("LOWER(type) LIKE ?", contains(f.Type))
	}
	if search != "" {
		term := contains(search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(location) LIKE ?", term, term, term)
	}
	return query
}

// CreateJob creates a job and binds the creator as its owner in one
// transaction. Leads get an owner row too.
func (s *JobService) CreateJob(ctx context.Context, actor models.Actor, req *CreateJobRequest) (*models.Job, error) {
	if !actor.Role.IsReviewer() {
		return nil, apperror.New(apperror.KindForbidden, "only HR or Lead can create jobs")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid job", err)
	}

	externalID := req.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	}

	job := &models.Job{
		ExternalID:  externalID,
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Type:        req.Type,
		Description: req.Description,
		URL:         req.URL,
		PostedAt:    req.PostedAt,
		Source:      req.Source,
		RawJSON:     req.RawJSON,
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(job).Error; err != nil {
			if repository.IsUniqueViolation(err) {
				return apperror.Wrap(apperror.KindDuplicate, "a job with this external id already exists", err)
			}
			return apperror.Internal("failed to create job", err)
		}
		return s.owners.Bind(tx, job.ID, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// authorizeEdit lets a Lead edit any job and HR only the jobs it owns.
func (s *JobService) authorizeEdit(ctx context.Context, actor models.Actor, jobID uint) error {
	switch actor.Role {
	case models.RoleLead:
		return nil
	case models.RoleHR:
		owner, err := s.owners.OwnerOf(ctx, jobID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		if err != nil || owner != actor.ID {
			return apperror.New(apperror.KindForbidden, "only the owner of this job may change it")
		}
		return nil
	default:
		return apperror.New(apperror.KindForbidden, "only HR or Lead manage jobs")
	}
}

func (s *JobService) UpdateJob(ctx context.Context, actor models.Actor, jobID uint, req *UpdateJobRequest) (*models.Job, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid job", err)
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeEdit(ctx, actor, jobID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "title", req.Title)
	setIfPresent(updates, "company", req.Company)
	setIfPresent(updates, "location", req.Location)
	setIfPresent(updates, "type", req.Type)
	setIfPresent(updates, "description", req.Description)
	setIfPresent(updates, "url", req.URL)
	setIfPresent(updates, "source", req.Source)
	if req.PostedAt != nil {
		updates["posted_at"] = *req.PostedAt
	}
	if req.RawJSON != nil {
		updates["raw_json"] = req.RawJSON
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
			return nil, apperror.Internal("failed to update job", err)
		}
	}
	return s.GetJob(ctx, jobID)
}

// DeleteJob soft-deletes a job; its applications and their history stay.
func (s *JobService) DeleteJob(ctx context.Context, actor models.Actor, jobID uint) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.authorizeEdit(ctx, actor, jobID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(job).Error; err != nil {
		return apperror.Internal("failed to delete job", err)
	}
	return nil
}
