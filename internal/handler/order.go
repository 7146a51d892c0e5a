package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/oroshi/storefront/internal/domain/catalog"
	"github.com/oroshi/storefront/internal/domain/identity"
	"github.com/oroshi/storefront/internal/domain/order"
)

// GetOrder fetches one order as {order_id, data}. Both an absent order and
// a failing store yield 404 on this endpoint.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	rec, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		if !errors.Is(err, order.ErrNotFound) {
			zctx.From(r.Context()).Error("get order",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeBody(w, http.StatusOK, orderEnvelope(rec))
}

// CreateOrder runs the order-creation pipeline and returns the persisted
// record as {order_id, data}. Validation failures and missing referenced
// entities are client errors; store failures are server errors.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if key := r.Header.Get("api_key"); key != "" {
		ctx = identity.WithAPIKey(ctx, key)
	}

	rec, err := h.orders.Create(ctx, &req)
	if err != nil {
		h.writeCreateError(w, r, err)
		return
	}

	writeBody(w, http.StatusOK, orderEnvelope(rec))
}

// writeCreateError maps pipeline errors to HTTP responses.
func (h *Handler) writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *order.ValidationError
		sErr *catalog.ShopNotFoundError
		iErr *catalog.ItemNotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &sErr):
		writeError(w, http.StatusBadRequest, sErr.Error())
	case errors.As(err, &iErr):
		writeError(w, http.StatusBadRequest, iErr.Error())
	case errors.Is(err, identity.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		zctx.From(r.Context()).Error("create order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create order")
	}
}

// orderEnvelope encodes a stored order as {"order_id": id, "data": doc}.
func orderEnvelope(rec *order.Record) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("order_id")
	e.Str(rec.ID)
	e.FieldStart("data")
	e.Raw(rec.Data)
	e.ObjEnd()
	return e.Bytes()
}
