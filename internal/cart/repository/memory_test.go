package repository

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	missing, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, missing)

	c := &model.Cart{SessionID: "a", Items: []model.CartItem{{ProductID: "p", UnitPrice: decimal.RequireFromString("1.50"), Quantity: 1}}}
	require.NoError(t, s.Save(ctx, c))

	// callers cannot change the stored cart through their copy
	c.Items[0].Quantity = 7
	loaded, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Items[0].Quantity)
	loaded.Items[0].Quantity = 9
	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)

	require.NoError(t, s.Delete(ctx, "a"))
	gone, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
