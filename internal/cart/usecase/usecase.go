package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/cart"
	"github.com/fekuna/omnipos-trace-service/internal/cart/dto"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"go.uber.org/zap"
)

type cartUseCase struct {
	storage  cart.Storage
	products cart.ProductRepository
	locker   cart.Locker
	logger   logger.ZapLogger
	now      func() time.Time
}

// NewCartUseCase builds the cart. A nil locker falls back to an in-process
// one, which only protects a single instance.
func NewCartUseCase(storage cart.Storage, products cart.ProductRepository, locker cart.Locker, log logger.ZapLogger) cart.UseCase {
	if locker == nil {
		locker = cache.NewLocalLocker()
	}
	return &cartUseCase{
		storage:  storage,
		products: products,
		locker:   locker,
		logger:   log,
		now:      time.Now,
	}
}

func (uc *cartUseCase) Get(ctx context.Context, sessionID string) (*dto.CartView, error) {
	c, err := uc.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return dto.NewCartView(sessionID, c), nil
}

// AddItem adds quantity to the product's line, creating it at the current
// price when the product is not in the cart yet.
func (uc *cartUseCase) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*dto.CartView, error) {
	if quantity < 1 || quantity > cart.MaxQuantity {
		return nil, cart.ErrInvalidQuantity
	}

	unlock, err := uc.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := indexOf(c, productID); i >= 0 {
		if c.Items[i].Quantity+quantity > cart.MaxQuantity {
			return nil, cart.ErrInvalidQuantity
		}
		c.Items[i].Quantity += quantity
	} else {
		p, err := uc.products.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", cart.ErrProductNotFound, productID)
		}
		c.Items = append(c.Items, model.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  quantity,
		})
	}

	return uc.save(ctx, c)
}

// UpdateQuantity sets the line's quantity; zero removes the line.
func (uc *cartUseCase) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*dto.CartView, error) {
	if quantity < 0 || quantity > cart.MaxQuantity {
		return nil, cart.ErrInvalidQuantity
	}

	unlock, err := uc.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	i := indexOf(c, productID)
	if i < 0 {
		return nil, cart.ErrItemNotFound
	}

	if quantity == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	return uc.save(ctx, c)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, sessionID, productID string) (*dto.CartView, error) {
	return uc.UpdateQuantity(ctx, sessionID, productID, 0)
}

func (uc *cartUseCase) Clear(ctx context.Context, sessionID string) error {
	if err := uc.storage.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (uc *cartUseCase) lock(ctx context.Context, sessionID string) (func(), error) {
	unlock, err := uc.locker.Lock(ctx, "lock:cart:"+sessionID)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	return unlock, nil
}

func (uc *cartUseCase) load(ctx context.Context, sessionID string) (*model.Cart, error) {
	c, err := uc.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil {
		c = &model.Cart{SessionID: sessionID}
	}
	return c, nil
}

func (uc *cartUseCase) save(ctx context.Context, c *model.Cart) (*dto.CartView, error) {
	c.UpdatedAt = uc.now().UTC()
	if len(c.Items) == 0 {
		// an emptied cart is the same as no cart
		if err := uc.storage.Delete(ctx, c.SessionID); err != nil {
			return nil, fmt.Errorf("delete cart: %w", err)
		}
		return dto.NewCartView(c.SessionID, nil), nil
	}
	if err := uc.storage.Save(ctx, c); err != nil {
		uc.logger.Error("failed to save cart", zap.String("session", c.SessionID), zap.Error(err))
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return dto.NewCartView(c.SessionID, c), nil
}

func indexOf(c *model.Cart, productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
