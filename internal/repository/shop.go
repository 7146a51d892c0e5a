package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oroshi/storefront/internal/domain/catalog"
)

const (
	listShopsSQL   = `SELECT id, data FROM shops ORDER BY id`
	getShopByIDSQL = `SELECT id, data FROM shops WHERE id = $1`
)

var _ catalog.ShopRepository = (*ShopRepository)(nil)

// ShopRepository implements catalog.ShopRepository backed by PostgreSQL.
type ShopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository returns a ShopRepository that uses the given pool.
func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

// List returns every shop document ordered by id.
func (r *ShopRepository) List(ctx context.Context) ([]catalog.Shop, error) {
	rows, err := r.pool.Query(ctx, listShopsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}
	return pgx.CollectRows(rows, scanShop)
}

// GetByID returns a single shop by its identifier, or
// catalog.ErrShopNotFound when it does not exist.
func (r *ShopRepository) GetByID(ctx context.Context, shopID string) (*catalog.Shop, error) {
	rows, err := r.pool.Query(ctx, getShopByIDSQL, shopID)
	if err != nil {
		return nil, fmt.Errorf("getting shop %q: %w", shopID, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanShop)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrShopNotFound
		}
		return nil, fmt.Errorf("getting shop %q: %w", shopID, err)
	}
	return &s, nil
}

func scanShop(row pgx.CollectableRow) (catalog.Shop, error) {
	var s catalog.Shop
	err := row.Scan(&s.ID, &s.Data)
	return s, err
}
