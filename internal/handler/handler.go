// Package handler exposes the storefront HTTP surface: shop and product
// listings, order lookup, and order creation.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/oroshi/storefront/internal/domain/catalog"
	"github.com/oroshi/storefront/internal/domain/order"
)

// Handler serves the storefront API, delegating business logic to the
// order service and catalog repositories.
type Handler struct {
	shops  catalog.ShopRepository
	items  catalog.ItemRepository
	orders *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	shops catalog.ShopRepository,
	items catalog.ItemRepository,
	orders *order.Service,
) *Handler {
	return &Handler{
		shops:  shops,
		items:  items,
		orders: orders,
	}
}

// Routes returns the storefront route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/shops", h.ListShops)
	r.Get("/shop/{shopID}/products", h.ListShopProducts)
	r.Get("/order/{orderID}", h.GetOrder)
	r.Post("/order", h.CreateOrder)
	return r
}
