// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

type UserService struct {
	db             *gorm.DB
	storageService *StorageService
}

type UpdateProfileRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	PhotoURL          *string `json:"photo_url,omitempty" validate:"omitempty,url"`
	FullName          *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone             *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	ResumeURL         *string `json:"resume_url,omitempty" validate:"omitempty,url"`
	LinkedinURL       *string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	PortfolioURL      *string `json:"portfolio_url,omitempty" validate:"omitempty,url"`
	CandidatePhotoURL *string `json:"candidate_photo_url,omitempty" validate:"omitempty,url"`
}

type ProfileResponse struct {
	User      *models.User      `json:"user"`
	Candidate *models.Candidate `json:"candidate,omitempty"`
}

func NewUserService(db *gorm.DB, storageService *StorageService) *UserService {
	return &UserService{
		db:             db,
		storageService: storageService,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) findCandidate(ctx context.Context, userID uint) (*models.Candidate, error) {
	var candidate models.Candidate
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("failed to load candidate profile", err)
	}
	return &candidate, nil
}

// ResolveCandidateProfile returns the candidate profile of userID, creating a
// minimal one from the user record on first use. A concurrent bootstrap for
// the same user is resolved by the unique user_id index.
func (s *UserService) ResolveCandidateProfile(ctx context.Context, userID uint) (*models.Candidate, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(apperror.KindProfileRequired, "no user record to build a candidate profile from")
		}
		return nil, err
	}

	candidate, err := s.findCandidate(ctx, userID)
	if err != nil || candidate != nil {
		return candidate, err
	}

	candidate = &models.Candidate{
		UserID:   &user.ID,
		FullName: fallbackName(user),
		Email:    user.Email,
		PhotoURL: user.PhotoURL,
	}
	if err := s.db.WithContext(ctx).Create(candidate).Error; err != nil {
		if repository.IsUniqueViolation(err) {
			existing, findErr := s.findCandidate(ctx, userID)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, apperror.Internal("failed to create candidate profile", err)
	}
	return candidate, nil
}

func fallbackName(user *models.User) string {
	if user.Name != "" {
		return user.Name
	}
	if local, _, ok := strings.Cut(user.Email, "@"); ok && local != "" {
		return local
	}
	return "Candidate"
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*ProfileResponse, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.findCandidate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: user, Candidate: candidate}, nil
}

// UpdateProfile changes the user's name and photo. For candidates the profile
// fields are updated in the same transaction.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, req *UpdateProfileRequest) (*ProfileResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid profile", err)
	}

	resp := &ProfileResponse{}
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "user not found")
			}
			return apperror.Internal("failed to load user", err)
		}

		userUpdates := map[string]interface{}{}
		if req.Name != nil {
			userUpdates["name"] = *req.Name
		}
		if req.PhotoURL != nil {
			userUpdates["photo_url"] = *req.PhotoURL
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&user).Updates(userUpdates).Error; err != nil {
				return apperror.Internal("failed to update user", err)
			}
			if err := tx.First(&user, actor.ID).Error; err != nil {
				return apperror.Internal("failed to reload user", err)
			}
		}
		resp.User = &user

		if actor.Role != models.RoleCandidate {
			return nil
		}

		var candidate models.Candidate
		if err := tx.Where("user_id = ?", actor.ID).First(&candidate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindProfileRequired, "candidate profile not found")
			}
			return apperror.Internal("failed to load candidate profile", err)
		}

		candidateUpdates := map[string]interface{}{}
		setIfPresent(candidateUpdates, "full_name", req.FullName)
		setIfPresent(candidateUpdates, "phone", req.Phone)
		setIfPresent(candidateUpdates, "resume_url", req.ResumeURL)
		setIfPresent(candidateUpdates, "linkedin_url", req.LinkedinURL)
		setIfPresent(candidateUpdates, "portfolio_url", req.PortfolioURL)
		if req.CandidatePhotoURL != nil {
			candidateUpdates["photo_url"] = *req.CandidatePhotoURL
		} else {
			setIfPresent(candidateUpdates, "photo_url", req.PhotoURL)
		}
		if len(candidateUpdates) > 0 {
			if err := tx.Model(&candidate).Updates(candidateUpdates).Error; err != nil {
				return apperror.Internal("failed to update candidate profile", err)
			}
			if err := tx.First(&candidate, candidate.ID).Error; err != nil {
				return apperror.Internal("failed to reload candidate profile", err)
			}
		}
		resp.Candidate = &candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func setIfPresent(updates map[string]interface{}, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}

// UploadResume stores a resume file and points the candidate profile at it.
func (s *UserService) UploadResume(ctx context.Context, actor models.Actor, file ResumeFile) (*UploadResult, error) {
	if actor.Role != models.RoleCandidate {
		return nil, apperror.New(apperror.KindForbidden, "only candidates have resumes")
	}

	candidate, err := s.ResolveCandidateProfile(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.storageService.UploadResume(ctx, candidate.ID, file)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(candidate).Update("resume_url", result.URL).Error; err != nil {
		return nil, apperror.Internal("failed to store resume url", err)
	}
	return result, nil
}
