package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/auth/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/role"
	"go.uber.org/zap"
)

type authUseCase struct {
	repo   auth.Repository
	tokens *auth.TokenIssuer
	logger logger.ZapLogger
}

func NewAuthUseCase(repo auth.Repository, tokens *auth.TokenIssuer, log logger.ZapLogger) auth.UseCase {
	return &authUseCase{
		repo:   repo,
		tokens: tokens,
		logger: log,
	}
}

func (uc *authUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, auth.ErrInvalidCredentials
	}

	r, err := role.Parse(user.Role)
	if err != nil {
		uc.logger.Error("user has an unknown role", zap.String("user_id", user.ID), zap.String("role", user.Role))
		return nil, err
	}
	redirect, err := r.HomePath()
	if err != nil {
		return nil, err
	}

	token, expires, err := uc.tokens.Issue(user, r)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		Token:     token,
		ExpiresAt: expires,
		Role:      string(r),
		Portal:    r.Label(),
		Name:      user.Name,
		Redirect:  redirect,
	}, nil
}
