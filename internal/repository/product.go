package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oroshi/storefront/internal/domain/catalog"
)

const (
	listItemsByShopSQL = `SELECT id, price, data FROM products
		WHERE shop_id = $1 ORDER BY id`

	getItemSQL = `SELECT id, price, data FROM products
		WHERE shop_id = $1 AND id = $2`
)

var _ catalog.ItemRepository = (*ItemRepository)(nil)

// ItemRepository implements catalog.ItemRepository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// ListByShop returns all catalog items under a shop ordered by id.
func (r *ItemRepository) ListByShop(ctx context.Context, shopID string) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsByShopSQL, shopID)
	if err != nil {
		return nil, fmt.Errorf("listing items for shop %q: %w", shopID, err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByShopAndID returns one catalog item, or catalog.ErrItemNotFound when
// the shop has no item with that identifier.
func (r *ItemRepository) GetByShopAndID(ctx context.Context, shopID, itemID string) (*catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getItemSQL, shopID, itemID)
	if err != nil {
		return nil, fmt.Errorf("getting item %q/%q: %w", shopID, itemID, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting item %q/%q: %w", shopID, itemID, err)
	}
	return &it, nil
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var (
		it    catalog.Item
		price decimal.Decimal
	)
	err := row.Scan(&it.ID, &price, &it.Data)
	it.Price = price
	return it, err
}
