package auth

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/model"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
