package handler

import (
	"context"

	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// CatalogService is the read-only product API
type CatalogService interface {
	ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Page[catalog.Product], error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

// CatalogHandler serves product listings and details
type CatalogHandler struct {
	BaseHandler
	catalog CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /catalog/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalog.ProductFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories handles GET /catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	h.Success(c, categories)
}
