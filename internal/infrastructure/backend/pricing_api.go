package backend

import (
	"context"
	"net/http"

	"github.com/erp/storefront/internal/domain/pricing"
	"github.com/erp/storefront/internal/domain/shared"
)

// ListPriceLists returns a page of price lists.
func (c *Client) ListPriceLists(ctx context.Context, params shared.ListParams) (shared.Page[pricing.PriceList], error) {
	return GetPage[pricing.PriceList](ctx, c, "/api/price-lists", params.Query())
}

// GetPriceList returns one price list with its items.
func (c *Client) GetPriceList(ctx context.Context, id string) (*pricing.PriceList, error) {
	var pl pricing.PriceList
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/price-lists/" + PathID(id)}, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// CreatePriceList creates an empty price list.
func (c *Client) CreatePriceList(ctx context.Context, req pricing.CreatePriceListRequest) (*pricing.PriceList, error) {
	var pl pricing.PriceList
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/price-lists", Body: req}, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// ReplacePriceListItems replaces every item of a price list.
func (c *Client) ReplacePriceListItems(ctx context.Context, id string, req pricing.ReplaceItemsRequest) (*pricing.PriceList, error) {
	var pl pricing.PriceList
	err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/api/price-lists/" + PathID(id) + "/items",
		Body:   req,
	}, &pl)
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

// ListPromotions returns a page of promotions.
func (c *Client) ListPromotions(ctx context.Context, filter pricing.PromotionFilter) (shared.Page[pricing.Promotion], error) {
	return GetPage[pricing.Promotion](ctx, c, "/api/promotions", filter.Query())
}

// CreatePromotion creates a promotion.
func (c *Client) CreatePromotion(ctx context.Context, p pricing.Promotion) (*pricing.Promotion, error) {
	var out pricing.Promotion
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/promotions", Body: p}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePromotion replaces a promotion.
func (c *Client) UpdatePromotion(ctx context.Context, id string, p pricing.Promotion) (*pricing.Promotion, error) {
	var out pricing.Promotion
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/api/promotions/" + PathID(id), Body: p}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateDiscount asks the backend to evaluate promotions for a basket.
func (c *Client) CalculateDiscount(ctx context.Context, req pricing.DiscountRequest) (*pricing.DiscountResult, error) {
	var res pricing.DiscountResult
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/promotions/calculate-discount", Body: req}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
