// internal/services/ownership_service.go
package services

import (
	"context"
	"errors"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
)

// OwnershipService answers who may act on an application: the HR owner of
// its job, or any Lead.
type OwnershipService struct {
	owners          *repository.OwnershipRepository
	apps            ApplicationRepository
	enforceAssignee bool
}

func NewOwnershipService(owners *repository.OwnershipRepository, apps ApplicationRepository, enforceAssignee bool) *OwnershipService {
	return &OwnershipService{
		owners:          owners,
		apps:            apps,
		enforceAssignee: enforceAssignee,
	}
}

func (s *OwnershipService) OwnerOf(ctx context.Context, jobID uint) (uint, error) {
	return s.owners.OwnerOf(ctx, jobID)
}

// AssigneeOf returns the Lead routed to the application, or nil.
func (s *OwnershipService) AssigneeOf(ctx context.Context, applicationID uint) (*uint, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return app.AssigneeID, nil
}

// IsJobOwner reports whether actorID owns jobID. A job without an owner row
// is owned by nobody.
func (s *OwnershipService) IsJobOwner(ctx context.Context, jobID, actorID uint) (bool, error) {
	owner, err := s.OwnerOf(ctx, jobID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return owner == actorID, nil
}

// Authorize checks that actor may transition app. HR must own the job; a
// Lead may act on anything unless assignee enforcement is on and the
// application is routed to a different Lead.
func (s *OwnershipService) Authorize(ctx context.Context, actor models.Actor, app *models.Application) error {
	switch actor.Role {
	case models.RoleHR:
		owns, err := s.IsJobOwner(ctx, app.JobID, actor.ID)
		if err != nil {
			return err
		}
		if !owns {
			return apperror.New(apperror.KindForbidden, "only the HR owner of this job may manage its applications")
		}
		return nil
	case models.RoleLead:
		if s.enforceAssignee && app.AssigneeID != nil && *app.AssigneeID != actor.ID {
			return apperror.New(apperror.KindForbidden, "application is assigned to another lead")
		}
		return nil
	default:
		return apperror.New(apperror.KindForbidden, "role may not change application status")
	}
}

// CanView reports whether actor may read app and its history.
func (s *OwnershipService) CanView(ctx context.Context, actor models.Actor, app *models.Application) (bool, error) {
	switch actor.Role {
	case models.RoleLead:
		return true, nil
	case models.RoleHR:
		return s.IsJobOwner(ctx, app.JobID, actor.ID)
	case models.RoleCandidate:
		return app.ApplicantUserID == actor.ID, nil
	}
	return false, nil
}
