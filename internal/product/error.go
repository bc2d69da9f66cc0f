package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("out of stock")
	ErrUnknownBrand    = errors.New("brand does not exist")
	ErrInvalidPrice    = errors.New("price must be greater than 0")
)
