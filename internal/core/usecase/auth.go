package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
)

// AuthUseCase verifies identity-provider tokens and manages stored user
// profiles. Token issuance stays with the external provider.
type AuthUseCase struct {
	verifier ports.TokenVerifier
	users    ports.UserRepository
}

func NewAuthUseCase(verifier ports.TokenVerifier, users ports.UserRepository) *AuthUseCase {
	return &AuthUseCase{verifier: verifier, users: users}
}

func (uc *AuthUseCase) Verify(ctx context.Context, token string) (*domain.AuthClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "verify token", errors.New("token is required"))
	}
	return uc.verifier.Verify(ctx, token)
}

// Login verifies the token and returns the claims plus the stored profile,
// if one exists.
func (uc *AuthUseCase) Login(ctx context.Context, token string) (*domain.AuthClaims, *domain.UserProfile, error) {
	claims, err := uc.Verify(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	profile, err := uc.users.GetByUID(ctx, claims.UID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return claims, nil, nil
		}
		return nil, nil, err
	}
	return claims, profile, nil
}

// Register verifies the token and upserts the caller-supplied profile
// fields under the token's uid.
func (uc *AuthUseCase) Register(ctx context.Context, token string, profile domain.UserProfile) (*domain.UserProfile, error) {
	claims, err := uc.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile.UID = claims.UID
	profile.Email = claims.Email
	if profile.Name == "" {
		profile.Name = claims.Name
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := uc.users.Upsert(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
