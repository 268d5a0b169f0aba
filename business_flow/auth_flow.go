package businessflow

import (
	"context"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/app/services"
)

// AuthFlow authenticates dashboard operators. Credentials come from
// configuration; there is no self-service signup on this surface.
type AuthFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authFlowImpl struct {
	tokenService     services.TokenService
	operatorUsername string
	operatorPassHash string
	accessTTLSeconds int64
}

// NewAuthFlow creates a new auth flow
func NewAuthFlow(tokenService services.TokenService, operatorUsername, operatorPassHash string, accessTTLSeconds int64) AuthFlow {
	return &authFlowImpl{
		tokenService:     tokenService,
		operatorUsername: operatorUsername,
		operatorPassHash: operatorPassHash,
		accessTTLSeconds: accessTTLSeconds,
	}
}

func (f *authFlowImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Username != f.operatorUsername || !services.VerifyPassword(f.operatorPassHash, req.Password) {
		return nil, ErrIncorrectCredentials
	}

	access, refresh, err := f.tokenService.GenerateTokens(req.Username)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to generate tokens", err)
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    f.accessTTLSeconds,
		TokenType:    "Bearer",
	}, nil
}

func (f *authFlowImpl) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	access, refresh, err := f.tokenService.RefreshToken(refreshToken)
	if err != nil {
		return nil, ErrIncorrectCredentials
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    f.accessTTLSeconds,
		TokenType:    "Bearer",
	}, nil
}
