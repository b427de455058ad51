package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/cache"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoCartOwner is returned when a request carries neither a cart cookie nor a signed-in user
var ErrNoCartOwner = shared.NewDomainError("CART_NO_OWNER", "No cart is associated with this visitor")

// ProductLookup fetches the current product snapshot when adding to a cart
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// CartConfig holds cart service settings
type CartConfig struct {
	Limits   cart.Limits
	TTL      time.Duration
	Currency string
}

// Owner identifies whose cart a request operates on. A signed-in user wins
// over the guest cart id.
type Owner struct {
	CartID string
	UserID string
}

func (o Owner) key() (string, error) {
	switch {
	case o.UserID != "":
		return "cart:user:" + o.UserID, nil
	case o.CartID != "":
		return "cart:guest:" + o.CartID, nil
	default:
		return "", ErrNoCartOwner
	}
}

// AddItemInput is the body of POST /cart/items
type AddItemInput struct {
	ProductID string `json:"product_id" binding:"required,max=64"`
	VariantID string `json:"variant_id,omitempty" binding:"omitempty,max=64"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CartService persists carts in the key-value store. Mutations are
// read-modify-write on a single key; concurrent writers are last-writer-wins
// and clients detect lost updates through Cart.Version.
type CartService struct {
	store    shared.KVStore
	products ProductLookup
	config   CartConfig
}

// NewCartService creates a cart service
func NewCartService(store shared.KVStore, products ProductLookup, config CartConfig) *CartService {
	return &CartService{store: store, products: products, config: config}
}

// Get returns the owner's cart, or a fresh empty one that is not yet stored
func (s *CartService) Get(ctx context.Context, owner Owner) (*cart.Cart, error) {
	key, err := owner.key()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, key, owner)
}

func (s *CartService) load(ctx context.Context, key string, owner Owner) (*cart.Cart, error) {
	c, err := cache.GetJSON[*cart.Cart](ctx, s.store, key)
	if errors.Is(err, shared.ErrKeyNotFound) || (err == nil && c == nil) {
		return s.newCart(owner), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

func (s *CartService) newCart(owner Owner) *cart.Cart {
	id := owner.CartID
	if owner.UserID != "" || id == "" {
		id = uuid.NewString()
	}
	c := cart.NewWithID(id, s.config.Currency)
	c.OwnerID = owner.UserID
	return c
}

func (s *CartService) save(ctx context.Context, owner Owner, c *cart.Cart) error {
	key, err := owner.key()
	if err != nil {
		return err
	}
	if err := cache.SetJSON(ctx, s.store, key, c, s.config.TTL); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartService) mutate(ctx context.Context, owner Owner, fn func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem adds a product at its current backend price. The product must be
// active and have enough stock for the resulting line quantity.
func (s *CartService) AddItem(ctx context.Context, owner Owner, in AddItemInput) (*cart.Cart, error) {
	if in.Quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}
	p, err := s.products.GetProduct(ctx, in.ProductID)
	if err != nil {
		if backend.IsNotFound(err) || errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.Purchasable() {
		return nil, cart.ErrNotPurchasable
	}

	currency := p.Currency
	if currency == "" {
		currency = s.config.Currency
	}
	item := cart.Item{
		ProductID: p.ID,
		VariantID: in.VariantID,
		SKU:       p.SKU,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		UnitPrice: p.Price,
		Currency:  currency,
	}

	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		want := in.Quantity
		for _, l := range c.Lines {
			if l.ProductID == item.ProductID && l.VariantID == item.VariantID {
				want += l.Quantity
			}
		}
		if !p.InStock(want) {
			return cart.ErrOutOfStock
		}
		_, err := c.AddItem(item, in.Quantity, s.config.Limits)
		return err
	})
}

// UpdateQuantity sets a line's quantity; zero removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, owner Owner, lineID string, qty int) (*cart.Cart, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		return c.SetQuantity(lineID, qty, s.config.Limits)
	})
}

// RemoveItem deletes a line
func (s *CartService) RemoveItem(ctx context.Context, owner Owner, lineID string) (*cart.Cart, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		return c.RemoveItem(lineID)
	})
}

// Clear empties the cart but keeps its id, so the version keeps growing
func (s *CartService) Clear(ctx context.Context, owner Owner) (*cart.Cart, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// MergeGuest folds the guest cart into the user's cart after a storefront
// login and deletes the guest cart. It returns the merged cart.
func (s *CartService) MergeGuest(ctx context.Context, guestCartID, userID string) (*cart.Cart, error) {
	if guestCartID == "" || userID == "" {
		return nil, ErrNoCartOwner
	}
	guestKey, _ := Owner{CartID: guestCartID}.key()
	guest, err := cache.GetJSON[*cart.Cart](ctx, s.store, guestKey)
	if errors.Is(err, shared.ErrKeyNotFound) || (err == nil && (guest == nil || guest.IsEmpty())) {
		return s.Get(ctx, Owner{UserID: userID})
	}
	if err != nil {
		return nil, fmt.Errorf("load guest cart: %w", err)
	}

	userOwner := Owner{UserID: userID}
	merged, err := s.mutate(ctx, userOwner, func(c *cart.Cart) error {
		if dropped := c.Merge(guest, s.config.Limits); dropped > 0 {
			logger.L(ctx).Info("guest cart merged with dropped lines",
				zap.String("cart_id", guestCartID),
				zap.Int("dropped", dropped),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, guestKey); err != nil {
		logger.L(ctx).Warn("failed to delete merged guest cart",
			zap.String("cart_id", guestCartID),
			zap.Error(err),
		)
	}
	return merged, nil
}
