package order

import (
	"time"

	"suitup-be/internal/cart"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ListLimit caps the customer order history.
const ListLimit = 10

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []Item          `json:"items"`
	User            *Customer       `json:"user,omitempty"`
}

type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"orderId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Product     *ProductSummary `json:"product,omitempty"`
}

// ProductSummary is the live product as seen from an order line. Name falls
// back to the snapshot when the product no longer exists.
type ProductSummary struct {
	Name     string   `json:"name"`
	ImageURL []string `json:"imageUrl"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PlaceOrderInput struct {
	Cart            cart.Cart        `json:"cart"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	ShippingAddress string           `json:"shippingAddress"`
}

type UpdateStatusInput struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
}
