package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/oroshi/storefront/internal/domain/catalog"
	"github.com/oroshi/storefront/internal/domain/identity"
	"github.com/oroshi/storefront/internal/domain/tax"
)

// Service runs the order-creation pipeline: schema validation, identity
// resolution, catalog resolution, composition, persistence, and read-back.
type Service struct {
	identity identity.Resolver
	resolver *catalog.Resolver
	taxes    tax.Calculator
	orders   Repository
}

// NewService creates an order Service with the required capabilities.
func NewService(
	id identity.Resolver,
	resolver *catalog.Resolver,
	taxes tax.Calculator,
	orders Repository,
) *Service {
	return &Service{
		identity: id,
		resolver: resolver,
		taxes:    taxes,
		orders:   orders,
	}
}

// Create validates the request, resolves referenced entities, composes the
// order document, persists it, and reads the stored record back so the
// response carries every store-assigned field. Each stage short-circuits:
// a validation failure reaches no repository, and the first missing entity
// aborts before any write.
func (s *Service) Create(ctx context.Context, req *CreateOrderRequest) (*Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.identity.Resolve(ctx, req.User)
	if err != nil {
		return nil, err
	}

	itemReqs := make([]catalog.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		itemReqs[i] = catalog.ItemRequest{
			Item:     it.Item,
			Quantity: it.Quantity,
		}
	}

	resolved, err := s.resolver.Resolve(ctx, req.Shop, itemReqs)
	if err != nil {
		return nil, err
	}

	doc := Compose(req, resolved, user, s.taxes)

	id, err := s.orders.Create(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	rec, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "read back order %s", id)
	}

	return rec, nil
}

// Get fetches a stored order by its identifier.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return rec, nil
}
