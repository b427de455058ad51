package backend

import (
	"context"
	"net/http"

	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
)

// ListProducts returns a page of catalog products.
func (c *Client) ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Page[catalog.Product], error) {
	return GetPage[catalog.Product](ctx, c, "/api/products", filter.Query())
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/products/" + PathID(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var cats []catalog.Category
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/categories"}, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	return cats, nil
}
