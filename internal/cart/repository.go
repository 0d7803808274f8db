package cart

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/model"
)

// Storage persists carts by session id. Load returns (nil, nil) for an
// unknown session.
type Storage interface {
	Load(ctx context.Context, sessionID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// Locker serialises read-modify-write cycles on one cart.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}
