package cart

import (
	"context"

	"github.com/fekuna/omnipos-trace-service/internal/cart/dto"
)

type UseCase interface {
	Get(ctx context.Context, sessionID string) (*dto.CartView, error)
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*dto.CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*dto.CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*dto.CartView, error)
	Clear(ctx context.Context, sessionID string) error
}
