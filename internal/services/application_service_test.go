package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
	"github.com/hirehub/hirehub-backend/internal/testutil"
)

type recordingNotifier struct {
	mu      sync.Mutex
	entries []models.StatusHistory
}

func (n *recordingNotifier) NotifyStatusChanged(app *models.Application, entry *models.StatusHistory) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, *entry)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// barrierStore holds every GetByID caller until all parties have read, so
// concurrent transitions all start from the same status.
type barrierStore struct {
	ApplicationRepository
	reads *sync.WaitGroup
}

func (b *barrierStore) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	app, err := b.ApplicationRepository.GetByID(ctx, id)
	b.reads.Done()
	b.reads.Wait()
	return app, err
}

type LifecycleSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	store     *repository.ApplicationStore
	audit     *repository.AuditLog
	owners    *repository.OwnershipRepository
	users     *UserService
	jobs      *JobService
	notifier  *recordingNotifier
	service   *ApplicationService
	hr        models.Actor
	otherHR   models.Actor
	lead      models.Actor
	otherLead models.Actor
	applicant models.Actor
	job       *models.Job
}

func (s *LifecycleSuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.db = testutil.NewDB(t)
	s.audit = repository.NewAuditLog(s.db)
	s.store = repository.NewApplicationStore(s.db, s.audit)
	s.owners = repository.NewOwnershipRepository(s.db)
	s.users = NewUserService(s.db, nil)
	s.jobs = NewJobService(s.db, s.owners)
	s.notifier = &recordingNotifier{}
	s.service = s.newService(s.store, false)

	s.hr = actorOf(testutil.CreateUser(t, s.db, models.RoleHR))
	s.otherHR = actorOf(testutil.CreateUser(t, s.db, models.RoleHR))
	s.lead = actorOf(testutil.CreateUser(t, s.db, models.RoleLead))
	s.otherLead = actorOf(testutil.CreateUser(t, s.db, models.RoleLead))
	applicant, _ := testutil.CreateCandidate(t, s.db)
	s.applicant = actorOf(applicant)
	s.job = testutil.CreateJob(t, s.db, s.hr.ID)
}

func (s *LifecycleSuite) newService(apps ApplicationRepository, enforceAssignee bool) *ApplicationService {
	ownership := NewOwnershipService(s.owners, apps, enforceAssignee)
	return NewApplicationService(apps, s.audit, ownership, s.jobs, s.users, s.users, s.notifier)
}

func actorOf(u *models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.Role}
}

func (s *LifecycleSuite) submit() *models.Application {
	app, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{JobID: s.job.ID})
	s.Require().NoError(err)
	return app
}

func (s *LifecycleSuite) move(actor models.Actor, app *models.Application, to models.ApplicationStatus) (*TransitionResult, error) {
	return s.service.TransitionStatus(s.ctx, actor, app.ID, &TransitionStatusRequest{Status: to})
}

func (s *LifecycleSuite) historyLen(appID uint) int {
	chain, err := s.audit.Chain(s.ctx, appID)
	s.Require().NoError(err)
	return len(chain)
}

func (s *LifecycleSuite) assertReplayMatches(appID uint) {
	chain, err := s.audit.Chain(s.ctx, appID)
	s.Require().NoError(err)
	replayed, err := models.ReplayStatus(chain)
	s.Require().NoError(err)

	app, err := s.store.GetByID(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(app.Status, replayed)
}

func (s *LifecycleSuite) TestSubmitStartsAtApplied() {
	reason := "I love distributed systems"
	app, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{JobID: s.job.ID, Reason: &reason})
	s.Require().NoError(err)

	s.Equal(models.StatusApplied, app.Status)
	s.Equal(s.applicant.ID, app.ApplicantUserID)

	chain, err := s.audit.Chain(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Require().Len(chain, 1)
	s.Nil(chain[0].FromStatus)
	s.Equal(models.StatusApplied, chain[0].ToStatus)
	s.Equal(s.applicant.ID, chain[0].ChangedByID)
}

func (s *LifecycleSuite) TestSubmitTwiceIsDuplicate() {
	s.submit()

	_, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{JobID: s.job.ID})
	s.ErrorIs(err, apperror.ErrDuplicate)

	var count int64
	s.Require().NoError(s.db.Model(&models.Application{}).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *LifecycleSuite) TestSubmitUnknownJob() {
	_, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{JobID: s.job.ID + 100})
	s.ErrorIs(err, apperror.ErrJobNotFound)
}

func (s *LifecycleSuite) TestSubmitToDeletedJob() {
	s.Require().NoError(s.jobs.DeleteJob(s.ctx, s.hr, s.job.ID))

	_, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{JobID: s.job.ID})
	s.ErrorIs(err, apperror.ErrJobNotFound)
}

func (s *LifecycleSuite) TestSubmitRequiresCandidateRole() {
	_, err := s.service.SubmitApplication(s.ctx, s.hr, &SubmitApplicationRequest{JobID: s.job.ID})
	s.ErrorIs(err, apperror.ErrForbidden)
}

func (s *LifecycleSuite) TestSubmitBootstrapsMissingProfile() {
	user := testutil.CreateUser(s.T(), s.db, models.RoleCandidate)
	actor := actorOf(user)

	app, err := s.service.SubmitApplication(s.ctx, actor, &SubmitApplicationRequest{JobID: s.job.ID})
	s.Require().NoError(err)

	var candidate models.Candidate
	s.Require().NoError(s.db.Where("user_id = ?", user.ID).First(&candidate).Error)
	s.Equal(candidate.ID, app.CandidateID)
	s.Equal(user.Email, candidate.Email)
	s.Equal(user.Name, candidate.FullName)
}

func (s *LifecycleSuite) TestSubmitWithoutUserRecordNeedsProfile() {
	ghost := models.Actor{ID: 9999, Role: models.RoleCandidate}

	_, err := s.service.SubmitApplication(s.ctx, ghost, &SubmitApplicationRequest{JobID: s.job.ID})
	s.ErrorIs(err, apperror.ErrProfileRequired)
}

func (s *LifecycleSuite) TestSubmitRejectsZeroJob() {
	_, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *LifecycleSuite) TestOwnerMovesToInterviewWithAssignee() {
	app := s.submit()

	reason := "strong profile"
	res, err := s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusInterview,
		Reason:     &reason,
		AssigneeID: &s.lead.ID,
	})
	s.Require().NoError(err)

	s.Equal(models.StatusInterview, res.Application.Status)
	s.Require().NotNil(res.Application.AssigneeID)
	s.Equal(s.lead.ID, *res.Application.AssigneeID)

	s.Require().NotNil(res.HistoryEntry.FromStatus)
	s.Equal(models.StatusApplied, *res.HistoryEntry.FromStatus)
	s.Equal(models.StatusInterview, res.HistoryEntry.ToStatus)
	s.Equal(s.hr.ID, res.HistoryEntry.ChangedByID)
	s.Require().NotNil(res.HistoryEntry.Reason)
	s.Equal(reason, *res.HistoryEntry.Reason)

	s.Equal(2, s.historyLen(app.ID))
	s.Equal(1, s.notifier.count())
	s.assertReplayMatches(app.ID)
}

func (s *LifecycleSuite) TestOwnerAndAssigneeLookups() {
	ownership := NewOwnershipService(s.owners, s.store, false)

	owner, err := ownership.OwnerOf(s.ctx, s.job.ID)
	s.Require().NoError(err)
	s.Equal(s.hr.ID, owner)

	_, err = ownership.OwnerOf(s.ctx, s.job.ID+1000)
	s.ErrorIs(err, apperror.ErrNotFound)

	app := s.submit()
	assignee, err := ownership.AssigneeOf(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Nil(assignee)

	_, err = s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusInterview,
		AssigneeID: &s.lead.ID,
	})
	s.Require().NoError(err)

	assignee, err = ownership.AssigneeOf(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Require().NotNil(assignee)
	s.Equal(s.lead.ID, *assignee)

	_, err = ownership.AssigneeOf(s.ctx, app.ID+1000)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *LifecycleSuite) TestNonOwnerHRIsForbidden() {
	app := s.submit()

	_, err := s.move(s.otherHR, app, models.StatusScreening)
	s.ErrorIs(err, apperror.ErrForbidden)

	stored, err := s.store.GetByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApplied, stored.Status)
	s.Equal(1, s.historyLen(app.ID))
	s.Zero(s.notifier.count())
}

func (s *LifecycleSuite) TestCandidateCannotTransition() {
	app := s.submit()

	_, err := s.move(s.applicant, app, models.StatusScreening)
	s.ErrorIs(err, apperror.ErrForbidden)
	s.Equal(1, s.historyLen(app.ID))
}

func (s *LifecycleSuite) TestLeadMakesOffer() {
	app := s.submit()
	_, err := s.move(s.hr, app, models.StatusInterview)
	s.Require().NoError(err)

	res, err := s.move(s.lead, app, models.StatusOffer)
	s.Require().NoError(err)
	s.Equal(models.StatusOffer, res.Application.Status)
	s.Equal(3, s.historyLen(app.ID))
	s.assertReplayMatches(app.ID)
}

func (s *LifecycleSuite) TestHRCannotActOnOffer() {
	app := s.submit()
	_, err := s.move(s.hr, app, models.StatusInterview)
	s.Require().NoError(err)
	_, err = s.move(s.lead, app, models.StatusOffer)
	s.Require().NoError(err)

	_, err = s.move(s.hr, app, models.StatusRejected)
	s.ErrorIs(err, apperror.ErrIllegalTransition)
	s.Equal(3, s.historyLen(app.ID))
}

func (s *LifecycleSuite) TestLeadCannotActBeforeInterview() {
	app := s.submit()

	_, err := s.move(s.lead, app, models.StatusOffer)
	s.ErrorIs(err, apperror.ErrIllegalTransition)
}

func (s *LifecycleSuite) TestSelfTransitionIsIllegal() {
	app := s.submit()

	_, err := s.move(s.hr, app, models.StatusApplied)
	s.ErrorIs(err, apperror.ErrIllegalTransition)
}

func (s *LifecycleSuite) TestLeadSendsBackToScreening() {
	app := s.submit()
	_, err := s.move(s.hr, app, models.StatusInterview)
	s.Require().NoError(err)

	_, err = s.move(s.lead, app, models.StatusScreening)
	s.Require().NoError(err)

	res, err := s.move(s.hr, app, models.StatusRejected)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, res.Application.Status)
	s.assertReplayMatches(app.ID)
}

func (s *LifecycleSuite) TestUnknownApplication() {
	_, err := s.service.TransitionStatus(s.ctx, s.hr, 4242, &TransitionStatusRequest{Status: models.StatusScreening})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *LifecycleSuite) TestUnknownTargetStatus() {
	app := s.submit()

	_, err := s.move(s.hr, app, models.ApplicationStatus("HIRED"))
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *LifecycleSuite) TestExpectedStatusMismatchIsStale() {
	app := s.submit()
	_, err := s.move(s.hr, app, models.StatusScreening)
	s.Require().NoError(err)

	_, err = s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:         models.StatusInterview,
		ExpectedStatus: models.StatusApplied.Ptr(),
	})
	s.ErrorIs(err, apperror.ErrStaleState)
	s.Equal(2, s.historyLen(app.ID))
}

func (s *LifecycleSuite) TestAssigneeMustBeLead() {
	app := s.submit()

	_, err := s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusInterview,
		AssigneeID: &s.otherHR.ID,
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	missing := uint(777)
	_, err = s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusInterview,
		AssigneeID: &missing,
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	s.Equal(1, s.historyLen(app.ID))
}

func (s *LifecycleSuite) TestAssigneeOnlyOnInterview() {
	app := s.submit()

	_, err := s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusScreening,
		AssigneeID: &s.lead.ID,
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *LifecycleSuite) TestEnforcedAssigneeBlocksOtherLeads() {
	s.service = s.newService(s.store, true)
	app := s.submit()
	_, err := s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusInterview,
		AssigneeID: &s.lead.ID,
	})
	s.Require().NoError(err)

	_, err = s.move(s.otherLead, app, models.StatusOffer)
	s.ErrorIs(err, apperror.ErrForbidden)

	_, err = s.move(s.lead, app, models.StatusOffer)
	s.NoError(err)
}

func (s *LifecycleSuite) TestAnyLeadActsWithoutEnforcement() {
	app := s.submit()
	_, err := s.service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{
		Status:     models.StatusInterview,
		AssigneeID: &s.lead.ID,
	})
	s.Require().NoError(err)

	_, err = s.move(s.otherLead, app, models.StatusRejected)
	s.NoError(err)
}

func (s *LifecycleSuite) TestConcurrentTransitionsHaveOneWinner() {
	app := s.submit()

	reads := &sync.WaitGroup{}
	reads.Add(2)
	service := s.newService(&barrierStore{ApplicationRepository: s.store, reads: reads}, false)

	targets := []models.ApplicationStatus{models.StatusScreening, models.StatusRejected}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target models.ApplicationStatus) {
			defer wg.Done()
			_, errs[i] = service.TransitionStatus(s.ctx, s.hr, app.ID, &TransitionStatusRequest{Status: target})
		}(i, target)
	}
	wg.Wait()

	var wins, stale int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperror.KindOf(err) == apperror.KindStaleState:
			stale++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, wins)
	s.Equal(1, stale)
	s.Equal(2, s.historyLen(app.ID))
	s.assertReplayMatches(app.ID)
}

func (s *LifecycleSuite) TestListScopesByRole() {
	mine := s.submit()

	otherJob := testutil.CreateJob(s.T(), s.db, s.otherHR.ID)
	other, err := s.service.SubmitApplication(s.ctx, s.applicant, &SubmitApplicationRequest{JobID: otherJob.ID})
	s.Require().NoError(err)

	apps, total, err := s.service.ListApplications(s.ctx, s.hr, ListApplicationsQuery{})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(apps, 1)
	s.Equal(mine.ID, apps[0].ID)

	apps, total, err = s.service.ListApplications(s.ctx, s.applicant, ListApplicationsQuery{})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Equal(other.ID, apps[0].ID)

	// Leads default to INTERVIEW, nothing is there yet.
	apps, total, err = s.service.ListApplications(s.ctx, s.lead, ListApplicationsQuery{})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(apps)

	apps, total, err = s.service.ListApplications(s.ctx, s.lead, ListApplicationsQuery{
		Statuses: []models.ApplicationStatus{models.StatusApplied},
	})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(apps, 2)
}

func (s *LifecycleSuite) TestListHidesSettledFromHRByDefault() {
	app := s.submit()
	_, err := s.move(s.hr, app, models.StatusRejected)
	s.Require().NoError(err)

	_, total, err := s.service.ListApplications(s.ctx, s.hr, ListApplicationsQuery{})
	s.Require().NoError(err)
	s.Zero(total)

	_, total, err = s.service.ListApplications(s.ctx, s.hr, ListApplicationsQuery{
		Statuses: []models.ApplicationStatus{models.StatusRejected},
	})
	s.Require().NoError(err)
	s.EqualValues(1, total)
}

func (s *LifecycleSuite) TestListPages() {
	for i := 0; i < 3; i++ {
		applicant, _ := testutil.CreateCandidate(s.T(), s.db)
		_, err := s.service.SubmitApplication(s.ctx, actorOf(applicant), &SubmitApplicationRequest{JobID: s.job.ID})
		s.Require().NoError(err)
	}

	apps, total, err := s.service.ListApplications(s.ctx, s.hr, ListApplicationsQuery{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Len(apps, 1)
}

func (s *LifecycleSuite) TestListRejectsUnknownStatus() {
	_, _, err := s.service.ListApplications(s.ctx, s.hr, ListApplicationsQuery{
		Statuses: []models.ApplicationStatus{"HIRED"},
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *LifecycleSuite) TestGetApplicationShowsAllowedMoves() {
	app := s.submit()

	view, err := s.service.GetApplication(s.ctx, s.hr, app.ID)
	s.Require().NoError(err)
	s.Equal([]models.ApplicationStatus{models.StatusScreening, models.StatusInterview, models.StatusRejected}, view.AllowedTransitions)

	view, err = s.service.GetApplication(s.ctx, s.applicant, app.ID)
	s.Require().NoError(err)
	s.Empty(view.AllowedTransitions)

	_, err = s.service.GetApplication(s.ctx, s.otherHR, app.ID)
	s.ErrorIs(err, apperror.ErrForbidden)
}

func (s *LifecycleSuite) TestHistoryVisibility() {
	app := s.submit()
	_, err := s.move(s.hr, app, models.StatusScreening)
	s.Require().NoError(err)

	chain, err := s.service.GetHistory(s.ctx, s.applicant, app.ID)
	s.Require().NoError(err)
	s.Require().Len(chain, 2)
	s.Equal(models.StatusScreening, chain[1].ToStatus)

	_, err = s.service.GetHistory(s.ctx, s.lead, app.ID)
	s.NoError(err)

	_, err = s.service.GetHistory(s.ctx, s.otherHR, app.ID)
	s.ErrorIs(err, apperror.ErrForbidden)

	stranger, _ := testutil.CreateCandidate(s.T(), s.db)
	_, err = s.service.GetHistory(s.ctx, actorOf(stranger), app.ID)
	s.ErrorIs(err, apperror.ErrForbidden)
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}
