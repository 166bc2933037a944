package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/saree_store/internal/cache"
	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	maxRatingAttempts  = 3
	catalogLoadTimeout = 5 * time.Second
)

type CatalogService struct {
	repo  repository.ProductRepository
	cache cache.CatalogCache
	sfg   singleflight.Group // Prevents cache stampede
	log   *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, cache cache.CatalogCache, log *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	key := filterKey(f)
	v, err, _ := s.sfg.Do("list:"+key, func() (interface{}, error) {
		ctx, cancel := loadContext(ctx)
		defer cancel()

		products, err := s.cache.GetProducts(ctx, key)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).Warn("catalog cache get failed", zap.Error(err))
		}

		products, err = s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetProducts(ctx, key, products); err != nil {
				s.log.Warn("catalog cache set failed", zap.Error(err))
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do("product:"+id, func() (interface{}, error) {
		ctx, cancel := loadContext(ctx)
		defer cancel()

		product, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).Warn("catalog cache get failed", zap.String("product_id", id), zap.Error(err))
		}

		product, err = s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetProduct(ctx, product); err != nil {
				s.log.Warn("catalog cache set failed", zap.String("product_id", id), zap.Error(err))
			}
		}()
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// loadContext is used for loads shared through singleflight: it keeps the
// request values but not the cancellation of whichever caller started the load.
func loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Rating, p.RatingCount = 0, 0
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate("")
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrProductNotFound
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ID = oid
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(id)
	return s.repo.Get(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// RateProduct folds rating into the running average. Concurrent raters race on
// ratingCount; the loser re-reads and tries again.
func (s *CatalogService) RateProduct(ctx context.Context, id string, rating int) (*domain.Product, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.ErrInvalidRating
	}

	for attempt := 1; attempt <= maxRatingAttempts; attempt++ {
		product, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		prevCount := product.RatingCount
		if err := product.ApplyRating(rating); err != nil {
			return nil, err
		}

		err = s.repo.UpdateRating(ctx, id, prevCount, product.Rating, product.RatingCount)
		if err == nil {
			s.invalidate(id)
			return product, nil
		}
		if !errors.Is(err, repository.ErrRatingConflict) {
			return nil, err
		}
		logger.FromContext(ctx, s.log).Debug("rating conflict, retrying",
			zap.String("product_id", id), zap.Int("attempt", attempt))
	}
	return nil, repository.ErrRatingConflict
}

func (s *CatalogService) invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.String("product_id", id), zap.Error(err))
	}
}

func filterKey(f domain.ProductFilter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "c=%s|q=%s|s=%s|l=%d|o=%d",
		f.Category, strings.ToLower(f.Search), f.Sort, f.Limit, f.Offset)
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "|min=%g", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "|max=%g", *f.MaxPrice)
	}
	return b.String()
}
