package services

import (
	"context"
	"fmt"
	"time"

	"github.com/petalhealth/petal_backend/internal/apperrors"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/internal/dto"
	"github.com/petalhealth/petal_backend/internal/utils"
	"github.com/petalhealth/petal_backend/pkg/config"
)

// tokenServiceImpl implements the TokenSvc interface. Access tokens are
// short-lived JWTs; refresh tokens are opaque random strings stored
// hashed against the user record.
type tokenServiceImpl struct {
	BaseService
	cfg   *config.Config
	users portssvc.UserSvcFacade
}

// NewTokenService creates a new token service.
func NewTokenService(cfg *config.Config, users portssvc.UserSvcFacade) portssvc.TokenSvc {
	return &tokenServiceImpl{cfg: cfg, users: users}
}

// Ensure tokenServiceImpl implements the TokenSvc interface
var _ portssvc.TokenSvc = (*tokenServiceImpl)(nil)

func (s *tokenServiceImpl) GenerateTokenPair(ctx context.Context, userID string) (*dto.TokenPair, error) {
	accessToken, err := utils.GenerateJWT(userID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token")
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiryDuration)
	if err := s.users.UpdateRefreshToken(ctx, userID, utils.HashRefreshToken(refreshToken), refreshExpiry); err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpiry:  now.Add(s.cfg.JWTExpiryDuration),
		RefreshExpiry: refreshExpiry,
	}, nil
}

func (s *tokenServiceImpl) RefreshTokenPair(ctx context.Context, userID string, refreshToken string) (*dto.TokenPair, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.RefreshTokenHash == nil || user.RefreshTokenExpiry == nil {
		return nil, fmt.Errorf("%w: no refresh token on record", apperrors.ErrValidation)
	}
	if time.Now().UTC().After(*user.RefreshTokenExpiry) {
		return nil, fmt.Errorf("%w: refresh token expired", apperrors.ErrValidation)
	}
	if utils.HashRefreshToken(refreshToken) != *user.RefreshTokenHash {
		return nil, fmt.Errorf("%w: refresh token mismatch", apperrors.ErrValidation)
	}

	// Rotate: a used refresh token is immediately replaced.
	return s.GenerateTokenPair(ctx, userID)
}
