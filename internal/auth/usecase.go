package auth

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-trace-service/internal/auth/dto"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UseCase interface {
	Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error)
}
