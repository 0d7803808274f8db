package dto

import (
	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/shopspring/decimal"
)

type LineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartView struct {
	SessionID string     `json:"session_id"`
	Items     []LineView `json:"items"`
	ItemCount int        `json:"item_count"`
	Total     string     `json:"total"`
}

// NewCartView prices a cart. A nil cart is an empty one.
func NewCartView(sessionID string, c *model.Cart) *CartView {
	view := &CartView{SessionID: sessionID, Items: []LineView{}}
	total := decimal.Zero

	if c != nil {
		for _, it := range c.Items {
			line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(line)
			view.ItemCount += it.Quantity
			view.Items = append(view.Items, LineView{
				ProductID: it.ProductID,
				Name:      it.Name,
				UnitPrice: it.UnitPrice.StringFixed(2),
				Quantity:  it.Quantity,
				LineTotal: line.StringFixed(2),
			})
		}
	}

	view.Total = total.StringFixed(2)
	return view
}
