package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/models"
	"github.com/hirehub/hirehub-backend/internal/testutil"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	utils.SetJWTSecret("auth-test-secret")
	db := testutil.NewDB(t)
	svc := NewAuthService(db, &config.Config{JWT: config.JWTConfig{AccessTokenTTL: 2}})
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{
		Email:    "Thrall@Orgrimmar.test",
		Password: "for-the-horde",
		Phone:    "+1 555 0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "thrall@orgrimmar.test", resp.User.Email)
	assert.Equal(t, models.RoleCandidate, resp.User.Role)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 7200, resp.ExpiresIn)
	require.NotNil(t, resp.User.Candidate)
	assert.Equal(t, "thrall", resp.User.Candidate.FullName)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(models.RoleCandidate), claims.Role)

	_, err = svc.Register(ctx, &RegisterRequest{Email: "thrall@orgrimmar.test", Password: "another-one"})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	login, err := svc.Login(ctx, &LoginRequest{Email: "THRALL@orgrimmar.test", Password: "for-the-horde"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "thrall@orgrimmar.test", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@orgrimmar.test", Password: "for-the-horde"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRegisterValidates(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(db, &config.Config{JWT: config.JWTConfig{AccessTokenTTL: 1}})

	_, err := svc.Register(context.Background(), &RegisterRequest{Email: "not-an-email", Password: "123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
