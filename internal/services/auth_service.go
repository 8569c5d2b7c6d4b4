// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/database"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/repository"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest always creates a CANDIDATE; staff accounts are seeded.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name,omitempty" validate:"omitempty,max=100"`
	PhotoURL     string `json:"photo_url,omitempty" validate:"omitempty,url"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=50"`
	ResumeURL    string `json:"resume_url,omitempty" validate:"omitempty,url"`
	LinkedinURL  string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	PortfolioURL string `json:"portfolio_url,omitempty" validate:"omitempty,url"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Register creates the user and its candidate profile in one transaction.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid registration", err)
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Name:     req.Name,
		Role:     models.RoleCandidate,
		PhotoURL: req.PhotoURL,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if repository.IsUniqueViolation(err) {
				return apperror.Wrap(apperror.KindDuplicate, "user with this email already exists", err)
			}
			return apperror.Internal("failed to create user", err)
		}

		candidate := &models.Candidate{
			UserID:       &user.ID,
			FullName:     fallbackName(user),
			Email:        user.Email,
			Phone:        req.Phone,
			ResumeURL:    req.ResumeURL,
			LinkedinURL:  req.LinkedinURL,
			PortfolioURL: req.PortfolioURL,
			PhotoURL:     req.PhotoURL,
		}
		if err := tx.Create(candidate).Error; err != nil {
			return apperror.Internal("failed to create candidate profile", err)
		}
		user.Candidate = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "invalid credentials", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindUnauthorized, "invalid email or password")
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "invalid email or password")
	}

	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.ID, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperror.Internal("failed to generate access token", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
