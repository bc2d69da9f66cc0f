package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"suitup-be/internal/brand"
	"suitup-be/internal/db"
	"suitup-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	ListByBrand(ctx context.Context, brandID string) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	Search(ctx context.Context, opts SearchOptions) ([]*Product, error)
	PriceExtreme(ctx context.Context, brandName string, cheapest bool) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) (*Product, error)
	DecrementStock(ctx context.Context, id string, qty int) (*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `p.id, p.name, COALESCE(p.description, ''), p.price, p.image_url,
	COALESCE(p.category, ''), p.stock, p.brand_id, p.virtual_try_on_file, p.created_at`

const brandColumns = `b.id, b.name, COALESCE(b.logo_url, ''), b.created_at`

type scanner interface{ Scan(...any) error }

func scanProduct(row scanner, withBrand bool) (*Product, error) {
	var p Product
	var tryOn sql.NullString
	dest := []any{
		&p.ID, &p.Name, &p.Description, &p.Price, pq.Array(&p.ImageURL),
		&p.Category, &p.Stock, &p.BrandID, &tryOn, &p.CreatedAt,
	}

	var b brand.Brand
	if withBrand {
		dest = append(dest, &b.ID, &b.Name, &b.LogoURL, &b.CreatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if tryOn.Valid {
		p.VirtualTryOnFile = &tryOn.String
	}
	if p.ImageURL == nil {
		p.ImageURL = []string{}
	}
	if withBrand {
		p.Brand = &b
	}
	return &p, nil
}

func (r *repository) queryList(ctx context.Context, withBrand bool, query string, args ...any) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows, withBrand)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	return r.queryList(ctx, false,
		`SELECT `+productColumns+` FROM products p ORDER BY p.created_at DESC`)
}

func (r *repository) ListByBrand(ctx context.Context, brandID string) ([]*Product, error) {
	return r.queryList(ctx, false,
		`SELECT `+productColumns+` FROM products p WHERE p.brand_id = $1 ORDER BY p.created_at DESC`,
		brandID)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`, `+brandColumns+`
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.id = $1`, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) FindByName(ctx context.Context, name string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`, `+brandColumns+`
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY (LOWER(p.name) = LOWER($2)) DESC, p.created_at DESC
		LIMIT 1`, db.EscapeLike(name), name), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Search ranks in-stock products first, then newest.
func (r *repository) Search(ctx context.Context, opts SearchOptions) ([]*Product, error) {
	var maxPrice any
	if opts.MaxPrice != nil {
		maxPrice = opts.MaxPrice.String()
	}

	return r.queryList(ctx, true, `
		SELECT `+productColumns+`, `+brandColumns+`
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE ($1::text = '' OR p.name ILIKE '%' || $1 || '%' ESCAPE '\'
				OR p.description ILIKE '%' || $1 || '%' ESCAPE '\'
				OR p.category ILIKE '%' || $1 || '%' ESCAPE '\'
				OR b.name ILIKE '%' || $1 || '%' ESCAPE '\')
			AND ($2::text = '' OR b.name ILIKE '%' || $2 || '%' ESCAPE '\')
			AND ($3::numeric IS NULL OR p.price <= $3::numeric)
		ORDER BY (p.stock > 0) DESC, p.created_at DESC
		LIMIT $4`,
		db.EscapeLike(opts.Query), db.EscapeLike(opts.BrandName), maxPrice, opts.Limit)
}

func (r *repository) PriceExtreme(ctx context.Context, brandName string, cheapest bool) (*Product, error) {
	direction := "DESC"
	if cheapest {
		direction = "ASC"
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT `+productColumns+`, `+brandColumns+`
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE ($1::text = '' OR b.name ILIKE '%%' || $1 || '%%' ESCAPE '\')
		ORDER BY p.price %s, p.created_at DESC
		LIMIT 1`, direction), db.EscapeLike(brandName)), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ImageURL == nil {
		p.ImageURL = []string{}
	}

	created, err := scanProduct(r.db.QueryRowContext(ctx, `
		INSERT INTO products AS p (id, name, description, price, image_url, category, stock, brand_id, virtual_try_on_file)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, pq.Array(p.ImageURL),
		p.Category, p.Stock, p.BrandID, p.VirtualTryOnFile,
	), false)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUnknownBrand
		}
		logger.FromCtx(ctx).Error("failed to insert product",
			zap.String("layer", "repository"),
			zap.String("method", "Create"),
			zap.String("brand_id", p.BrandID),
			zap.Error(err),
		)
		return nil, err
	}
	return created, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SetStock(ctx context.Context, id string, stock int) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products AS p SET stock = $1
		WHERE p.id = $2
		RETURNING `+productColumns,
		stock, id,
	), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// DecrementStock never lets stock go negative: the update only matches
// while enough units remain.
func (r *repository) DecrementStock(ctx context.Context, id string, qty int) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products AS p SET stock = p.stock - $1
		WHERE p.id = $2 AND p.stock >= $1
		RETURNING `+productColumns,
		qty, id,
	), false)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	return nil, ErrOutOfStock
}
