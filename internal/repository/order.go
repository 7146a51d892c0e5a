package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oroshi/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, doc) VALUES ($1, $2)`

	getOrderByIDSQL = `SELECT id, doc FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Orders
// are stored as JSONB documents; a trigger stamps updatedAt into the
// document on every write.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order document and returns the assigned identifier.
func (r *OrderRepository) Create(ctx context.Context, doc *order.Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling order document: %w", err)
	}

	id := uuid.New().String()
	if _, err := r.pool.Exec(ctx, createOrderSQL, id, body); err != nil {
		return "", fmt.Errorf("creating order %q: %w", id, err)
	}

	return id, nil
}

// GetByID returns the stored order record, or order.ErrNotFound when no
// order with that identifier exists (including malformed identifiers).
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, order.ErrNotFound
	}

	var rec order.Record
	err := r.pool.QueryRow(ctx, getOrderByIDSQL, id).Scan(&rec.ID, &rec.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &rec, nil
}
