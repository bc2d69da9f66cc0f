package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"suitup-be/internal/cart"
	"suitup-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrderTx decrements stock for every line and inserts the order
	// with its items in one transaction. Nothing is written when any line
	// is short.
	CreateOrderTx(ctx context.Context, o *Order, lines cart.Cart) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `o.id, o.user_id, o.total_amount, o.shipping_address, o.status, o.created_at, o.updated_at`

type scanner interface{ Scan(...any) error }

func scanOrder(row scanner, withUser bool) (*Order, error) {
	var o Order
	dest := []any{
		&o.ID, &o.UserID, &o.TotalAmount, &o.ShippingAddress,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	}

	var name, email sql.NullString
	if withUser {
		dest = append(dest, &name, &email)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if withUser {
		o.User = &Customer{Name: name.String, Email: email.String}
	}
	o.Items = []Item{}
	return &o, nil
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order, lines cart.Cart) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("user_id", o.UserID),
	)

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, l := range lines.LockOrder() {
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - $1
			WHERE id = $2 AND stock >= $1`,
			l.Quantity, l.ProductID,
		)
		if err != nil {
			log.Error("failed to decrement stock", zap.String("product_id", l.ProductID), zap.Error(err))
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if n == 0 {
			return nil, &InsufficientStockError{ProductID: l.ProductID}
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, shipping_address, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.TotalAmount, o.ShippingAddress, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, fmt.Errorf("insert order: %w", err)
	}

	o.Items = make([]Item, 0, len(lines))
	for i, l := range lines {
		item := Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price, i,
		); err != nil {
			log.Error("failed to insert order item", zap.String("product_id", l.ProductID), zap.Error(err))
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

func (r *repository) queryOrders(ctx context.Context, withUser bool, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows, withUser)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit int) ([]*Order, error) {
	return r.queryOrders(ctx, false, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2`,
		userID, limit)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.queryOrders(ctx, true, `
		SELECT `+orderColumns+`, u.name, u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`, u.name, u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders AS o SET status = $1, updated_at = NOW()
		WHERE o.id = $2
		RETURNING `+orderColumns,
		status, id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// loadItems fetches the items of all orders in one query and attaches them
// in cart order.
func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.product_name, oi.quantity, oi.price,
			p.name, p.image_url
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.position`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		var liveName sql.NullString
		var images []string
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &liveName, pq.Array(&images),
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}

		summary := &ProductSummary{Name: item.ProductName, ImageURL: images}
		if liveName.Valid {
			summary.Name = liveName.String
		}
		if summary.ImageURL == nil {
			summary.ImageURL = []string{}
		}
		item.Product = summary

		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
