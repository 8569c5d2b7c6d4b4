// internal/services/application_service.go
package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/metrics"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

// ApplicationRepository is the storage the lifecycle engine runs on.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application, changedByID uint) (*models.StatusHistory, error)
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	ExistsForCandidate(ctx context.Context, jobID, candidateID uint) (bool, error)
	CompareAndTransition(ctx context.Context, p repository.TransitionParams) (*models.Application, *models.StatusHistory, error)
	List(ctx context.Context, f repository.ListFilter) ([]models.Application, int64, error)
}

type AuditTrail interface {
	Chain(ctx context.Context, applicationID uint) ([]models.StatusHistory, error)
}

type JobRegistry interface {
	JobExists(ctx context.Context, jobID uint) (bool, error)
}

// CandidateRegistry resolves, creating on first use, the profile of a
// candidate user. It fails with PROFILE_REQUIRED when that is impossible.
type CandidateRegistry interface {
	ResolveCandidateProfile(ctx context.Context, userID uint) (*models.Candidate, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

// TransitionNotifier is told about every committed status change. It must not
// block the caller.
type TransitionNotifier interface {
	NotifyStatusChanged(app *models.Application, entry *models.StatusHistory)
}

type ApplicationService struct {
	apps       ApplicationRepository
	audit      AuditTrail
	ownership  *OwnershipService
	jobs       JobRegistry
	candidates CandidateRegistry
	users      UserDirectory
	notifier   TransitionNotifier
}

type SubmitApplicationRequest struct {
	JobID  uint    `json:"job_id" validate:"required,gt=0"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type TransitionStatusRequest struct {
	Status         models.ApplicationStatus  `json:"status" validate:"required,app_status"`
	Reason         *string                   `json:"reason,omitempty" validate:"omitempty,max=1000"`
	AssigneeID     *uint                     `json:"assignee_id,omitempty" validate:"omitempty,gt=0"`
	ExpectedStatus *models.ApplicationStatus `json:"expected_status,omitempty" validate:"omitempty,app_status"`
}

type ListApplicationsQuery struct {
	Statuses []models.ApplicationStatus
	Page     int
	Limit    int
}

type TransitionResult struct {
	Application  *models.Application   `json:"application"`
	HistoryEntry *models.StatusHistory `json:"history_entry"`
}

// ApplicationView is an application together with the moves the viewer may
// make next.
type ApplicationView struct {
	*models.Application
	AllowedTransitions []models.ApplicationStatus `json:"allowed_transitions"`
}

func NewApplicationService(
	apps ApplicationRepository,
	audit AuditTrail,
	ownership *OwnershipService,
	jobs JobRegistry,
	candidates CandidateRegistry,
	users UserDirectory,
	notifier TransitionNotifier,
) *ApplicationService {
	return &ApplicationService{
		apps:       apps,
		audit:      audit,
		ownership:  ownership,
		jobs:       jobs,
		candidates: candidates,
		users:      users,
		notifier:   notifier,
	}
}

// SubmitApplication files a candidate's application to a job. The new
// application starts at APPLIED with its creation entry in the audit log.
func (s *ApplicationService) SubmitApplication(ctx context.Context, actor models.Actor, req *SubmitApplicationRequest) (app *models.Application, err error) {
	defer func() {
		metrics.RecordSubmission(outcomeOf(err))
	}()

	if actor.Role != models.RoleCandidate {
		return nil, apperror.New(apperror.KindForbidden, "only candidates can apply to jobs")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid application", err)
	}

	candidate, err := s.candidates.ResolveCandidateProfile(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	exists, err := s.jobs.JobExists(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.New(apperror.KindJobNotFound, "job not found")
	}

	// Advisory only; the unique index in Create is authoritative.
	applied, err := s.apps.ExistsForCandidate(ctx, req.JobID, candidate.ID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, apperror.New(apperror.KindDuplicate, "you have already applied for this job")
	}

	app = &models.Application{
		JobID:           req.JobID,
		CandidateID:     candidate.ID,
		ApplicantUserID: actor.ID,
		Reason:          req.Reason,
	}
	if _, err := s.apps.Create(ctx, app, actor.ID); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"job_id":         app.JobID,
		"candidate_id":   app.CandidateID,
		"actor_id":       actor.ID,
	}).Info("Application submitted")
	return app, nil
}

// ListApplications returns the caller's view: a candidate sees their own
// applications, HR sees applications on jobs it owns, a Lead sees all. HR and
// Lead default to the statuses they can act on.
func (s *ApplicationService) ListApplications(ctx context.Context, actor models.Actor, q ListApplicationsQuery) ([]models.Application, int64, error) {
	for _, status := range q.Statuses {
		if !status.Valid() {
			return nil, 0, apperror.New(apperror.KindInvalidInput, "unknown status filter "+string(status))
		}
	}

	filter := repository.ListFilter{Statuses: q.Statuses}
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		filter.Offset = (page - 1) * q.Limit
		filter.Limit = q.Limit
	}

	switch actor.Role {
	case models.RoleCandidate:
		filter.ApplicantUserID = &actor.ID
	case models.RoleHR:
		filter.OwnerID = &actor.ID
		if len(filter.Statuses) == 0 {
			filter.Statuses = ActionableStatuses(models.RoleHR)
		}
	case models.RoleLead:
		if len(filter.Statuses) == 0 {
			filter.Statuses = ActionableStatuses(models.RoleLead)
		}
	default:
		return nil, 0, apperror.New(apperror.KindForbidden, "unknown role")
	}

	return s.apps.List(ctx, filter)
}

// GetApplication returns one application if actor may see it.
func (s *ApplicationService) GetApplication(ctx context.Context, actor models.Actor, applicationID uint) (*ApplicationView, error) {
	app, err := s.visibleApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	view := &ApplicationView{Application: app, AllowedTransitions: []models.ApplicationStatus{}}
	if actor.Role.IsReviewer() && s.ownership.Authorize(ctx, actor, app) == nil {
		if targets := AllowedTargets(actor.Role, app.Status); targets != nil {
			view.AllowedTransitions = targets
		}
	}
	return view, nil
}

// TransitionStatus moves an application to req.Status on behalf of an HR or
// Lead actor. The checks run in order: role, existence, ownership, the
// caller's expected status, the transition table, then the assignee. The
// write itself is a compare-and-transition against the status read here, so
// a concurrent move surfaces as STALE_STATE.
func (s *ApplicationService) TransitionStatus(ctx context.Context, actor models.Actor, applicationID uint, req *TransitionStatusRequest) (result *TransitionResult, err error) {
	var from, to models.ApplicationStatus
	if req != nil {
		to = req.Status
	}
	defer func() {
		metrics.RecordTransition(string(actor.Role), string(from), string(to), outcomeOf(err))
	}()

	if !actor.Role.IsReviewer() {
		return nil, apperror.New(apperror.KindForbidden, "only HR or Lead may change application status")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid status change", err)
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	from = app.Status

	if err := s.ownership.Authorize(ctx, actor, app); err != nil {
		return nil, err
	}

	if req.ExpectedStatus != nil && *req.ExpectedStatus != app.Status {
		return nil, apperror.New(apperror.KindStaleState, "application is no longer in the expected status")
	}

	if !IsTransitionAllowed(actor.Role, app.Status, req.Status) {
		return nil, apperror.New(apperror.KindIllegalTransition,
			string(actor.Role)+" may not move an application from "+string(app.Status)+" to "+string(req.Status))
	}

	if req.AssigneeID != nil {
		if err := s.checkAssignee(ctx, actor, req); err != nil {
			return nil, err
		}
	}

	updated, entry, err := s.apps.CompareAndTransition(ctx, repository.TransitionParams{
		ApplicationID: app.ID,
		From:          app.Status,
		To:            req.Status,
		ChangedByID:   actor.ID,
		AssigneeID:    req.AssigneeID,
		Reason:        req.Reason,
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			logrus.WithError(err).WithFields(logrus.Fields{
				"application_id": app.ID,
				"from":           app.Status,
				"to":             req.Status,
				"actor_id":       actor.ID,
			}).Error("Status transition failed")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": updated.ID,
		"from":           app.Status,
		"to":             updated.Status,
		"actor_id":       actor.ID,
		"role":           actor.Role,
	}).Info("Application status changed")

	if s.notifier != nil {
		s.notifier.NotifyStatusChanged(updated, entry)
	}

	return &TransitionResult{Application: updated, HistoryEntry: entry}, nil
}

// checkAssignee accepts an assignee only on an HR move into INTERVIEW, and
// only if it names a Lead.
func (s *ApplicationService) checkAssignee(ctx context.Context, actor models.Actor, req *TransitionStatusRequest) error {
	if actor.Role != models.RoleHR || req.Status != models.StatusInterview {
		return apperror.New(apperror.KindInvalidInput, "assignee can only be set by HR when moving to INTERVIEW")
	}

	assignee, err := s.users.GetUserByID(ctx, *req.AssigneeID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.New(apperror.KindInvalidInput, "assignee does not exist")
		}
		return err
	}
	if assignee.Role != models.RoleLead {
		return apperror.New(apperror.KindInvalidInput, "assignee must be a lead")
	}
	return nil
}

// GetHistory returns the audit chain of an application, oldest first.
func (s *ApplicationService) GetHistory(ctx context.Context, actor models.Actor, applicationID uint) ([]models.StatusHistory, error) {
	if _, err := s.visibleApplication(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return s.audit.Chain(ctx, applicationID)
}

func (s *ApplicationService) visibleApplication(ctx context.Context, actor models.Actor, applicationID uint) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	ok, err := s.ownership.CanView(ctx, actor, app)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.New(apperror.KindForbidden, "you cannot view this application")
	}
	return app, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	return string(apperror.KindOf(err))
}
