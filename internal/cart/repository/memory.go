package repository

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-trace-service/internal/model"
)

// MemoryStorage is used when Redis is not configured. Carts live as long as
// the process.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string]model.Cart
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string]model.Cart)}
}

func (s *MemoryStorage) Load(_ context.Context, sessionID string) (*model.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]model.CartItem(nil), c.Items...)
	return &c, nil
}

func (s *MemoryStorage) Save(_ context.Context, c *model.Cart) error {
	stored := *c
	stored.Items = append([]model.CartItem(nil), c.Items...)
	s.mu.Lock()
	s.carts[c.SessionID] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}
