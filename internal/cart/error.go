package cart

import "errors"

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrMissingProductID   = errors.New("cart line is missing productId")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrTooManyLines       = errors.New("cart has too many lines")
	ErrQuantityOutOfRange = errors.New("quantity is too large")
)
