// Package cart models the client-held cart submitted at checkout. It is a
// value object and is never persisted on its own.
package cart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MaxLines    = 100
	MaxQuantity = 1000
)

type Line struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart []Line

// Validate reports the first malformed line, wrapped with its position.
func (c Cart) Validate() error {
	if len(c) == 0 {
		return ErrCartEmpty
	}
	if len(c) > MaxLines {
		return ErrTooManyLines
	}

	for i, l := range c {
		switch {
		case strings.TrimSpace(l.ProductID) == "":
			return fmt.Errorf("line %d: %w", i, ErrMissingProductID)
		case l.Quantity <= 0:
			return fmt.Errorf("line %d: %w", i, ErrInvalidQuantity)
		case l.Quantity > MaxQuantity:
			return fmt.Errorf("line %d: %w", i, ErrQuantityOutOfRange)
		case l.Price.IsNegative():
			return fmt.Errorf("line %d: %w", i, ErrInvalidPrice)
		}
	}
	return nil
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		total = total.Add(l.Subtotal())
	}
	return total
}

// LockOrder returns a copy of the lines sorted by product id. Stock rows
// are always locked in this order so concurrent checkouts cannot deadlock.
func (c Cart) LockOrder() []Line {
	out := make([]Line, len(c))
	copy(out, c)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
