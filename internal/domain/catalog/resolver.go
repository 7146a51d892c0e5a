package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ShopNotFoundError indicates the shop referenced by an order does not exist.
type ShopNotFoundError struct {
	ShopID string
}

func (e *ShopNotFoundError) Error() string {
	return fmt.Sprintf("shop %s doesn't exist", e.ShopID)
}

// ItemNotFoundError indicates a requested item is absent from the shop's
// catalog. ItemID always names the first missing item in request order.
type ItemNotFoundError struct {
	ShopID string
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s doesn't exist", e.ItemID)
}

// ItemRequest is a client-supplied (item, quantity) pair awaiting resolution.
type ItemRequest struct {
	Item     string
	Quantity float64
}

// ResolvedItem pairs a requested quantity with the catalog's authoritative
// unit price. The price is never taken from client input.
type ResolvedItem struct {
	Item      string
	Quantity  float64
	UnitValue decimal.Decimal
}

// Resolver verifies order references against the catalog and resolves
// authoritative prices for line items.
type Resolver struct {
	shops ShopRepository
	items ItemRepository
}

// NewResolver creates a Resolver over the given repositories.
func NewResolver(shops ShopRepository, items ItemRepository) *Resolver {
	return &Resolver{
		shops: shops,
		items: items,
	}
}

// Resolve confirms the shop exists, then looks up every requested item
// sequentially in request order. Lookups are deliberately not concurrent:
// the first missing item reported must always be the first one encountered
// in the submitted list. The first absent entity aborts resolution; nothing
// partial is returned.
func (r *Resolver) Resolve(ctx context.Context, shopID string, reqs []ItemRequest) ([]ResolvedItem, error) {
	if _, err := r.shops.GetByID(ctx, shopID); err != nil {
		if errors.Is(err, ErrShopNotFound) {
			return nil, &ShopNotFoundError{ShopID: shopID}
		}
		return nil, errors.Wrapf(err, "get shop %s", shopID)
	}

	resolved := make([]ResolvedItem, 0, len(reqs))
	for _, req := range reqs {
		item, err := r.items.GetByShopAndID(ctx, shopID, req.Item)
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return nil, &ItemNotFoundError{ShopID: shopID, ItemID: req.Item}
			}
			return nil, errors.Wrapf(err, "get item %s/%s", shopID, req.Item)
		}
		resolved = append(resolved, ResolvedItem{
			Item:      req.Item,
			Quantity:  req.Quantity,
			UnitValue: item.Price,
		})
	}

	return resolved, nil
}
