package brand

import (
	"context"
	"errors"
	"strings"

	"suitup-be/internal/apperr"
	"suitup-be/internal/cache"
	"suitup-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listCacheKey = "brands:all"

type Service interface {
	List(ctx context.Context) ([]*Brand, error)
	Get(ctx context.Context, id string) (*Brand, error)
	FindByName(ctx context.Context, name string) (*Brand, error)
	Create(ctx context.Context, input CreateInput) (*Brand, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	cache cache.Cache
}

func NewService(repo Repository, c cache.Cache) Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &service{repo: repo, cache: c}
}

// List serves from cache when possible. Cache failures fall through to
// the database.
func (s *service) List(ctx context.Context) ([]*Brand, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListBrands"),
	)

	var cached []*Brand
	err := s.cache.Get(ctx, listCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn("brand cache read failed", zap.Error(err))
	}

	brands, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list brands", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	if err := s.cache.Set(ctx, listCacheKey, brands); err != nil {
		log.Warn("brand cache write failed", zap.Error(err))
	}
	return brands, nil
}

func (s *service) Get(ctx context.Context, id string) (*Brand, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "Brand not found", ErrBrandNotFound)
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBrandNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, "Brand not found", err)
		}
		logger.FromCtx(ctx).Error("failed to get brand",
			zap.String("layer", "service"),
			zap.String("brand_id", id),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}
	return b, nil
}

func (s *service) FindByName(ctx context.Context, name string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("brand name is required")
	}

	b, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrBrandNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, "Brand not found", err)
		}
		return nil, apperr.Internal(err)
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Brand, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateBrand"),
	)

	b, err := s.repo.Create(ctx, &Brand{
		Name:    strings.TrimSpace(input.Name),
		LogoURL: strings.TrimSpace(input.LogoURL),
	})
	if err != nil {
		if errors.Is(err, ErrBrandExists) {
			return nil, apperr.Wrap(apperr.KindConflict, "Brand already exists", err)
		}
		return nil, apperr.Internal(err)
	}

	s.invalidate(ctx, log)
	log.Info("brand created", zap.String("brand_id", b.ID))
	return b, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteBrand"),
		zap.String("brand_id", id),
	)

	if _, err := uuid.Parse(id); err != nil {
		return apperr.Wrap(apperr.KindNotFound, "Brand not found", ErrBrandNotFound)
	}

	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, ErrBrandNotFound):
		return apperr.Wrap(apperr.KindNotFound, "Brand not found", err)
	case errors.Is(err, ErrBrandHasProducts):
		return apperr.Wrap(apperr.KindConflict, "Brand still has products; delete them first", err)
	case err != nil:
		log.Error("failed to delete brand", zap.Error(err))
		return apperr.Internal(err)
	}

	s.invalidate(ctx, log)
	log.Info("brand deleted")
	return nil
}

func (s *service) invalidate(ctx context.Context, log *zap.Logger) {
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		log.Warn("brand cache invalidation failed", zap.Error(err))
	}
}
