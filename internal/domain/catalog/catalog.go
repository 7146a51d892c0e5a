package catalog

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors returned by repositories when a looked-up entity is absent.
// Transient store failures are returned as distinct, wrapped errors.
var (
	ErrShopNotFound = errors.New("shop not found")
	ErrItemNotFound = errors.New("item not found")
)

// Shop is a merchant entity owning a catalog of items. The document body is
// kept opaque: read endpoints return it verbatim.
type Shop struct {
	ID   string
	Data json.RawMessage
}

// Item is a product record under a shop. Price is the authoritative unit
// price used during order resolution; the rest of the document is opaque.
type Item struct {
	ID    string
	Price decimal.Decimal
	Data  json.RawMessage
}

// ShopRepository defines read operations over shop documents.
type ShopRepository interface {
	List(ctx context.Context) ([]Shop, error)
	GetByID(ctx context.Context, shopID string) (*Shop, error)
}

// ItemRepository defines read operations over a shop's catalog items.
type ItemRepository interface {
	ListByShop(ctx context.Context, shopID string) ([]Item, error)
	GetByShopAndID(ctx context.Context, shopID, itemID string) (*Item, error)
}
