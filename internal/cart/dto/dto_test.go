package dto

import (
	"testing"

	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCartView(t *testing.T) {
	empty := NewCartView("s", nil)
	assert.Equal(t, "0.00", empty.Total)
	assert.NotNil(t, empty.Items)

	view := NewCartView("s", &model.Cart{Items: []model.CartItem{
		{ProductID: "a", UnitPrice: decimal.RequireFromString("0.10"), Quantity: 1},
		{ProductID: "b", UnitPrice: decimal.RequireFromString("0.20"), Quantity: 1},
		{ProductID: "c", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3},
	}})
	assert.Equal(t, "60.27", view.Total)
	assert.Equal(t, 5, view.ItemCount)
	assert.Equal(t, "59.97", view.Items[2].LineTotal)
}
