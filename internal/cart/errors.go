package cart

import "errors"

// MaxQuantity caps a single cart line.
const MaxQuantity = 99

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("product is not in the cart")
)
