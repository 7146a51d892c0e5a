package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ListShops returns every shop record as [{shop_id, data}, ...].
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shops.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list shops", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list shops")
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, s := range shops {
		e.ObjStart()
		e.FieldStart("shop_id")
		e.Str(s.ID)
		e.FieldStart("data")
		e.Raw(s.Data)
		e.ObjEnd()
	}
	e.ArrEnd()
	writeBody(w, http.StatusOK, e.Bytes())
}

// ListShopProducts returns a shop's catalog as {shop_id, products:[{id, data}]}.
// A shop with no items (or an unknown shop) yields an empty products list.
func (h *Handler) ListShopProducts(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")

	items, err := h.items.ListByShop(r.Context(), shopID)
	if err != nil {
		zctx.From(r.Context()).Error("list shop products",
			zap.String("shop_id", shopID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "could not list products")
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("shop_id")
	e.Str(shopID)
	e.FieldStart("products")
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(it.ID)
		e.FieldStart("data")
		e.Raw(it.Data)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	writeBody(w, http.StatusOK, e.Bytes())
}
