package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/testutil"
)

func ptr(s string) *string {
	return &s
}

func TestResolveCandidateProfileIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, nil)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, models.RoleCandidate)
	first, err := svc.ResolveCandidateProfile(ctx, user.ID)
	require.NoError(t, err)
	second, err := svc.ResolveCandidateProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Candidate{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveCandidateProfileStorageFailureIsInternal(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, nil)
	user := testutil.CreateUser(t, db, models.RoleCandidate)

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_candidates", func(tx *gorm.DB) {
		if tx.Statement.Table == "candidates" {
			_ = tx.AddError(errors.New("connection reset by peer"))
		}
	}))

	_, err := svc.ResolveCandidateProfile(context.Background(), user.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.NotErrorIs(t, err, apperror.ErrProfileRequired)
}

func TestResolveCandidateProfileWithoutUser(t *testing.T) {
	svc := NewUserService(testutil.NewDB(t), nil)

	_, err := svc.ResolveCandidateProfile(context.Background(), 9999)
	assert.ErrorIs(t, err, apperror.ErrProfileRequired)
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "Jaina", fallbackName(&models.User{Name: "Jaina", Email: "jaina@theramore.test"}))
	assert.Equal(t, "jaina", fallbackName(&models.User{Email: "jaina@theramore.test"}))
	assert.Equal(t, "Candidate", fallbackName(&models.User{}))
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, nil)
	ctx := context.Background()

	user, candidate := testutil.CreateCandidate(t, db)
	actor := actorOf(user)

	resp, err := svc.UpdateProfile(ctx, actor, &UpdateProfileRequest{
		Name:        ptr("Footman Renamed"),
		PhotoURL:    ptr("https://cdn.hirehub.test/footman.png"),
		Phone:       ptr("+44 20 7946 0000"),
		LinkedinURL: ptr("https://linkedin.com/in/footman"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Footman Renamed", resp.User.Name)
	require.NotNil(t, resp.Candidate)
	assert.Equal(t, candidate.ID, resp.Candidate.ID)

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "+44 20 7946 0000", profile.Candidate.Phone)
	assert.Equal(t, "https://cdn.hirehub.test/footman.png", profile.Candidate.PhotoURL)
	assert.Equal(t, candidate.FullName, profile.Candidate.FullName)

	_, err = svc.UpdateProfile(ctx, actor, &UpdateProfileRequest{ResumeURL: ptr("not a url")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpdateProfileForStaffSkipsCandidate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db, nil)

	hr := testutil.CreateUser(t, db, models.RoleHR)
	resp, err := svc.UpdateProfile(context.Background(), actorOf(hr), &UpdateProfileRequest{Name: ptr("Farseer")})
	require.NoError(t, err)
	assert.Equal(t, "Farseer", resp.User.Name)
	assert.Nil(t, resp.Candidate)
}

func TestUploadResumePointsProfileAtFile(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{Frontend: config.FrontendConfig{BaseURL: "http://localhost:5173"}}
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)
	svc := NewUserService(db, storage)
	ctx := context.Background()

	user, candidate := testutil.CreateCandidate(t, db)
	result, err := svc.UploadResume(ctx, actorOf(user), ResumeFile{Filename: "cv.pdf", Data: samplePDF})
	require.NoError(t, err)

	var stored models.Candidate
	require.NoError(t, db.First(&stored, candidate.ID).Error)
	assert.Equal(t, result.URL, stored.ResumeURL)

	lead := testutil.CreateUser(t, db, models.RoleLead)
	_, err = svc.UploadResume(ctx, actorOf(lead), ResumeFile{Filename: "cv.pdf", Data: samplePDF})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
