package product

import (
	"time"

	"suitup-be/internal/brand"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	ImageURL         []string        `json:"imageUrl"`
	Category         string          `json:"category,omitempty"`
	Stock            int             `json:"stock"`
	BrandID          string          `json:"brandId"`
	VirtualTryOnFile *string         `json:"virtualTryOnFile,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`

	Brand *brand.Brand `json:"brand,omitempty"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

type CreateInput struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Description      string          `json:"description" validate:"max=5000"`
	Price            decimal.Decimal `json:"price"`
	ImageURL         []string        `json:"imageUrl" validate:"omitempty,dive,url"`
	Category         string          `json:"category" validate:"max=100"`
	Stock            *int            `json:"stock" validate:"omitempty,gte=0"`
	BrandID          string          `json:"brandId" validate:"required,uuid"`
	VirtualTryOnFile *string         `json:"virtualTryOnFile" validate:"omitempty,url"`
}

type StockInput struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

// SearchOptions drives keyword recommendations. Query matches name,
// description, category or brand name.
type SearchOptions struct {
	Query     string
	BrandName string
	MaxPrice  *decimal.Decimal
	Limit     int
}

const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 10
)
