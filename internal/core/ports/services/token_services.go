package services

import (
	"context"

	"github.com/petalhealth/petal_backend/internal/dto"
)

// TokenSvc issues and refreshes access/refresh token pairs.
type TokenSvc interface {
	// GenerateTokenPair issues a new access and refresh token for the
	// user and stores the refresh token hash.
	GenerateTokenPair(ctx context.Context, userID string) (*dto.TokenPair, error)

	// RefreshTokenPair validates the presented refresh token against the
	// stored hash and, if valid and unexpired, rotates the pair.
	RefreshTokenPair(ctx context.Context, userID string, refreshToken string) (*dto.TokenPair, error)
}
