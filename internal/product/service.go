package product

import (
	"context"
	"errors"
	"strings"

	"suitup-be/internal/apperr"
	"suitup-be/internal/brand"
	"suitup-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BrandGetter interface {
	Get(ctx context.Context, id string) (*brand.Brand, error)
}

type Service interface {
	List(ctx context.Context) ([]*Product, error)
	ListByBrand(ctx context.Context, brandID string) (*brand.Brand, []*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) (*Product, error)
	// Buy takes a single unit, the "buy now" path outside checkout.
	Buy(ctx context.Context, id string) (*Product, error)

	Recommend(ctx context.Context, opts SearchOptions) ([]*Product, error)
	// Details looks a product up by id, or by name when the key is not an id.
	Details(ctx context.Context, key string) (*Product, error)
	Cheapest(ctx context.Context, brandName string) (*Product, error)
	MostExpensive(ctx context.Context, brandName string) (*Product, error)
}

type service struct {
	repo   Repository
	brands BrandGetter
}

func NewService(repo Repository, brands BrandGetter) Service {
	return &service{repo: repo, brands: brands}
}

func notFound(err error) error {
	return apperr.Wrap(apperr.KindNotFound, "Product not found", err)
}

func (s *service) internal(ctx context.Context, method string, err error, fields ...zap.Field) error {
	fields = append([]zap.Field{
		zap.String("layer", "service"),
		zap.String("method", method),
		zap.Error(err),
	}, fields...)
	logger.FromCtx(ctx).Error("product operation failed", fields...)
	return apperr.Internal(err)
}

func (s *service) List(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "List", err)
	}
	return products, nil
}

func (s *service) ListByBrand(ctx context.Context, brandID string) (*brand.Brand, []*Product, error) {
	b, err := s.brands.Get(ctx, brandID)
	if err != nil {
		return nil, nil, err
	}

	products, err := s.repo.ListByBrand(ctx, b.ID)
	if err != nil {
		return nil, nil, s.internal(ctx, "ListByBrand", err, zap.String("brand_id", brandID))
	}
	return b, products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(ErrProductNotFound)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, notFound(err)
		}
		return nil, s.internal(ctx, "Get", err, zap.String("product_id", id))
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	if !input.Price.IsPositive() {
		return nil, apperr.Wrap(apperr.KindInvalidRequest, ErrInvalidPrice.Error(), ErrInvalidPrice)
	}

	p := &Product{
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		Price:            input.Price.Round(2),
		ImageURL:         input.ImageURL,
		Category:         strings.TrimSpace(input.Category),
		BrandID:          input.BrandID,
		VirtualTryOnFile: input.VirtualTryOnFile,
	}
	if input.Stock != nil {
		p.Stock = *input.Stock
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, ErrUnknownBrand) {
			return nil, apperr.Wrap(apperr.KindInvalidRequest, ErrUnknownBrand.Error(), err)
		}
		return nil, s.internal(ctx, "Create", err)
	}

	logger.FromCtx(ctx).Info("product created",
		zap.String("product_id", created.ID),
		zap.String("brand_id", created.BrandID),
	)
	return created, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(ErrProductNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return notFound(err)
		}
		return s.internal(ctx, "Delete", err, zap.String("product_id", id))
	}
	return nil
}

func (s *service) SetStock(ctx context.Context, id string, stock int) (*Product, error) {
	if stock < 0 {
		return nil, apperr.Invalid("Invalid stock value")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(ErrProductNotFound)
	}

	p, err := s.repo.SetStock(ctx, id, stock)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, notFound(err)
		}
		return nil, s.internal(ctx, "SetStock", err, zap.String("product_id", id))
	}
	return p, nil
}

func (s *service) Buy(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(ErrProductNotFound)
	}

	p, err := s.repo.DecrementStock(ctx, id, 1)
	switch {
	case errors.Is(err, ErrProductNotFound):
		return nil, notFound(err)
	case errors.Is(err, ErrOutOfStock):
		return nil, apperr.Wrap(apperr.KindInsufficientStock, "Out of stock", err)
	case err != nil:
		return nil, s.internal(ctx, "Buy", err, zap.String("product_id", id))
	}
	return p, nil
}

func (s *service) Recommend(ctx context.Context, opts SearchOptions) ([]*Product, error) {
	opts.Query = strings.TrimSpace(opts.Query)
	opts.BrandName = strings.TrimSpace(opts.BrandName)
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	} else if opts.Limit > MaxSearchLimit {
		opts.Limit = MaxSearchLimit
	}
	if opts.MaxPrice != nil && opts.MaxPrice.IsNegative() {
		opts.MaxPrice = nil
	}

	products, err := s.repo.Search(ctx, opts)
	if err != nil {
		return nil, s.internal(ctx, "Recommend", err, zap.String("query", opts.Query))
	}
	return products, nil
}

func (s *service) Details(ctx context.Context, key string) (*Product, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.Invalid("product id or name is required")
	}
	if _, err := uuid.Parse(key); err == nil {
		return s.Get(ctx, key)
	}

	p, err := s.repo.FindByName(ctx, key)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, notFound(err)
		}
		return nil, s.internal(ctx, "Details", err, zap.String("name", key))
	}
	return p, nil
}

func (s *service) Cheapest(ctx context.Context, brandName string) (*Product, error) {
	return s.extreme(ctx, brandName, true)
}

func (s *service) MostExpensive(ctx context.Context, brandName string) (*Product, error) {
	return s.extreme(ctx, brandName, false)
}

func (s *service) extreme(ctx context.Context, brandName string, cheapest bool) (*Product, error) {
	p, err := s.repo.PriceExtreme(ctx, strings.TrimSpace(brandName), cheapest)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, notFound(err)
		}
		return nil, s.internal(ctx, "PriceExtreme", err, zap.String("brand", brandName))
	}
	return p, nil
}
