package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrMissingTotal     = errors.New("totalAmount is required")
	ErrNegativeTotal    = errors.New("totalAmount must not be negative")
	ErrMissingAddress   = errors.New("shippingAddress is required")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidProductID = errors.New("productId is not a valid id")
)

// InsufficientStockError names the first cart line the stock could not
// cover. A product that does not exist is reported the same way.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
