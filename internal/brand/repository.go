package brand

import (
	"context"
	"database/sql"
	"errors"

	"suitup-be/internal/db"
	"suitup-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Brand, error)
	GetByID(ctx context.Context, id string) (*Brand, error)
	FindByName(ctx context.Context, name string) (*Brand, error)
	Create(ctx context.Context, b *Brand) (*Brand, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const brandColumns = `id, name, COALESCE(logo_url, ''), created_at`

func scanBrand(row interface{ Scan(...any) error }) (*Brand, error) {
	var b Brand
	if err := row.Scan(&b.ID, &b.Name, &b.LogoURL, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) List(ctx context.Context) ([]*Brand, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+brandColumns+` FROM brands ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := make([]*Brand, 0)
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Brand, error) {
	b, err := scanBrand(r.db.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBrandNotFound
	}
	return b, err
}

// FindByName matches case-insensitively, exact names first.
func (r *repository) FindByName(ctx context.Context, name string) (*Brand, error) {
	b, err := scanBrand(r.db.QueryRowContext(ctx, `
		SELECT `+brandColumns+`
		FROM brands
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY (LOWER(name) = LOWER($2)) DESC, name ASC
		LIMIT 1`, db.EscapeLike(name), name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBrandNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, b *Brand) (*Brand, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	created, err := scanBrand(r.db.QueryRowContext(ctx, `
		INSERT INTO brands (id, name, logo_url)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING `+brandColumns,
		b.ID, b.Name, b.LogoURL,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrBrandExists
		}
		logger.FromCtx(ctx).Error("failed to insert brand",
			zap.String("layer", "repository"),
			zap.String("method", "Create"),
			zap.String("name", b.Name),
			zap.Error(err),
		)
		return nil, err
	}
	return created, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrBrandHasProducts
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBrandNotFound
	}
	return nil
}
