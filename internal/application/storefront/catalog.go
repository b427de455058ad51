// Package storefront holds the customer-facing use cases: catalog browsing,
// the cart, preferences, checkout and the customer's own order history.
package storefront

import (
	"context"
	"strings"

	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/cache"
)

// ErrProductNotFound is returned when the backend has no such product
var ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")

// CatalogBackend is the subset of the backend API used for browsing
type CatalogBackend interface {
	ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Page[catalog.Product], error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

// CatalogService serves product and category reads through a response cache
type CatalogService struct {
	backend CatalogBackend
	cache   *cache.ReadThrough
}

// NewCatalogService creates a catalog service. A nil or disabled cache sends
// every read to the backend.
func NewCatalogService(b CatalogBackend, c *cache.ReadThrough) *CatalogService {
	return &CatalogService{backend: b, cache: c}
}

// ListProducts lists products. Storefront listings default to active products.
func (s *CatalogService) ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Page[catalog.Product], error) {
	filter.ListParams = filter.ListParams.Normalize()
	if filter.Status == "" {
		filter.Status = catalog.ProductStatusActive
	}
	return cache.Load(ctx, s.cache, filter.CacheKey(), func(ctx context.Context) (shared.Page[catalog.Product], error) {
		return s.backend.ListProducts(ctx, filter)
	})
}

// GetProduct returns one product
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product id is required")
	}
	p, err := cache.Load(ctx, s.cache, "product:"+id, func(ctx context.Context) (*catalog.Product, error) {
		return s.backend.GetProduct(ctx, id)
	})
	if backend.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// ListCategories returns the category tree as a flat list
func (s *CatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return cache.Load(ctx, s.cache, "categories", s.backend.ListCategories)
}
