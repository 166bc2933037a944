package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newCatalog(products ...*domain.Product) (*CatalogService, *mockProductRepository, *mockCatalogCache) {
	repo := newMockProductRepository(products...)
	c := newMockCatalogCache()
	return NewCatalogService(repo, c, zap.NewNop()), repo, c
}

func TestListProducts_CacheAside(t *testing.T) {
	svc, repo, c := newCatalog(&domain.Product{Name: "Kanjivaram", Category: "silk", Price: 12999})
	ctx := context.Background()

	products, err := svc.ListProducts(ctx, domain.ProductFilter{Category: "silk"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	require.Eventually(t, func() bool { return c.listCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.ListProducts(ctx, domain.ProductFilter{Category: "silk"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)
}

func TestListProducts_CacheErrorFallsBackToRepo(t *testing.T) {
	svc, repo, c := newCatalog(&domain.Product{Name: "Kanjivaram", Category: "silk"})
	c.getErr = errors.New("redis down")

	products, err := svc.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, repo.lists)
}

func TestListProducts_RepoError(t *testing.T) {
	svc, repo, _ := newCatalog()
	repo.listErr = errors.New("mongo down")

	_, err := svc.ListProducts(context.Background(), domain.ProductFilter{})
	assert.EqualError(t, err, "mongo down")
}

func TestListProducts_CancelledLeaderDoesNotFailWaiters(t *testing.T) {
	svc, repo, _ := newCatalog(&domain.Product{Name: "Paithani", Category: "silk"})
	repo.listGate = make(chan struct{})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.ListProducts(leaderCtx, domain.ProductFilter{})
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return repo.waiting.Load() == 1 }, time.Second, 5*time.Millisecond)

	waiterErr := make(chan error, 1)
	go func() {
		products, err := svc.ListProducts(context.Background(), domain.ProductFilter{})
		if err == nil && len(products) != 1 {
			err = errors.New("unexpected product count")
		}
		waiterErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	time.Sleep(20 * time.Millisecond)
	close(repo.listGate)

	require.NoError(t, <-waiterErr)
	require.NoError(t, <-leaderErr)
}

func TestGetProduct(t *testing.T) {
	p := &domain.Product{Name: "Ikat", Category: "cotton"}
	svc, repo, c := newCatalog(p)
	ctx := context.Background()

	got, err := svc.GetProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ikat", got.Name)

	require.Eventually(t, func() bool {
		_, err := c.GetProduct(ctx, p.ID.Hex())
		return err == nil
	}, time.Second, 10*time.Millisecond)
	_, err = svc.GetProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	_, err = svc.GetProduct(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCreateProduct(t *testing.T) {
	svc, _, c := newCatalog()
	ctx := context.Background()

	err := svc.CreateProduct(ctx, &domain.Product{Name: "", Category: "silk"})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	p := &domain.Product{Name: "Chanderi", Category: "cotton", Price: 2499, Rating: 5, RatingCount: 100}
	require.NoError(t, svc.CreateProduct(ctx, p))
	assert.False(t, p.ID.IsZero())
	assert.Zero(t, p.RatingCount)
	assert.Equal(t, []string{""}, c.invalidated)
}

func TestUpdateProduct(t *testing.T) {
	p := &domain.Product{Name: "Tussar", Category: "silk", Price: 5000, Rating: 4, RatingCount: 2}
	svc, _, c := newCatalog(p)
	ctx := context.Background()

	updated, err := svc.UpdateProduct(ctx, p.ID.Hex(), &domain.Product{Name: "Tussar Silk", Category: "silk", Price: 5500})
	require.NoError(t, err)
	assert.Equal(t, "Tussar Silk", updated.Name)
	assert.Equal(t, 4.0, updated.Rating)
	assert.Equal(t, []string{p.ID.Hex()}, c.invalidated)

	_, err = svc.UpdateProduct(ctx, "bogus", &domain.Product{Name: "x", Category: "y"})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = svc.UpdateProduct(ctx, p.ID.Hex(), &domain.Product{Name: "x", Category: "y", OfferPercent: 95})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestDeleteProduct(t *testing.T) {
	p := &domain.Product{Name: "Tussar", Category: "silk"}
	svc, _, _ := newCatalog(p)

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID.Hex()))
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), p.ID.Hex()), repository.ErrProductNotFound)
}

func TestRateProduct_IncrementalMean(t *testing.T) {
	p := &domain.Product{Name: "Paithani", Category: "silk"}
	svc, repo, _ := newCatalog(p)
	ctx := context.Background()

	_, err := svc.RateProduct(ctx, p.ID.Hex(), 4)
	require.NoError(t, err)
	got, err := svc.RateProduct(ctx, p.ID.Hex(), 5)
	require.NoError(t, err)

	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.RatingCount)
	stored, _ := repo.Get(ctx, p.ID.Hex())
	assert.Equal(t, 4.5, stored.Rating)
}

func TestRateProduct_RetriesOnConflict(t *testing.T) {
	p := &domain.Product{Name: "Paithani", Category: "silk"}
	svc, repo, _ := newCatalog(p)
	repo.conflicts = 1

	got, err := svc.RateProduct(context.Background(), p.ID.Hex(), 4)
	require.NoError(t, err)
	// the concurrent 5 landed first
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.RatingCount)
}

func TestRateProduct_GivesUpAfterRepeatedConflicts(t *testing.T) {
	p := &domain.Product{Name: "Paithani", Category: "silk"}
	svc, repo, _ := newCatalog(p)
	repo.conflicts = maxRatingAttempts

	_, err := svc.RateProduct(context.Background(), p.ID.Hex(), 4)
	assert.ErrorIs(t, err, repository.ErrRatingConflict)
}

func TestRateProduct_InvalidRating(t *testing.T) {
	p := &domain.Product{Name: "Paithani", Category: "silk"}
	svc, repo, _ := newCatalog(p)

	for _, r := range []int{0, 6, -1} {
		_, err := svc.RateProduct(context.Background(), p.ID.Hex(), r)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}
	assert.Zero(t, repo.gets)
}

func TestFilterKey(t *testing.T) {
	minPrice := 100.0
	a := filterKey(domain.ProductFilter{Category: "silk", Search: "Red"})
	b := filterKey(domain.ProductFilter{Category: "silk", Search: "red"})
	c := filterKey(domain.ProductFilter{Category: "silk", Search: "red", MinPrice: &minPrice})

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, filterKey(domain.ProductFilter{Category: "Silk"}), filterKey(domain.ProductFilter{Category: "silk"}))
}
