package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oroshi/storefront/internal/domain/catalog"
	"github.com/oroshi/storefront/internal/domain/identity"
	"github.com/oroshi/storefront/internal/domain/order"
	"github.com/oroshi/storefront/internal/domain/tax"
)

// --- Mock implementations ---

type fakeShopRepo struct {
	shops   []catalog.Shop
	listErr error
}

func (f *fakeShopRepo) List(_ context.Context) ([]catalog.Shop, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.shops, nil
}

func (f *fakeShopRepo) GetByID(_ context.Context, shopID string) (*catalog.Shop, error) {
	for i := range f.shops {
		if f.shops[i].ID == shopID {
			return &f.shops[i], nil
		}
	}
	return nil, catalog.ErrShopNotFound
}

type fakeItemRepo struct {
	items   map[string][]catalog.Item
	listErr error
}

func (f *fakeItemRepo) ListByShop(_ context.Context, shopID string) ([]catalog.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items[shopID], nil
}

func (f *fakeItemRepo) GetByShopAndID(_ context.Context, shopID, itemID string) (*catalog.Item, error) {
	for i, it := range f.items[shopID] {
		if it.ID == itemID {
			return &f.items[shopID][i], nil
		}
	}
	return nil, catalog.ErrItemNotFound
}

type fakeOrderRepo struct {
	records   map[string]json.RawMessage
	nextID    string
	createErr error
}

func (f *fakeOrderRepo) Create(_ context.Context, doc *order.Document) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	if f.records == nil {
		f.records = make(map[string]json.RawMessage)
	}
	f.records[f.nextID] = data
	return f.nextID, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*order.Record, error) {
	data, ok := f.records[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &order.Record{ID: id, Data: data}, nil
}

// --- Helpers ---

func newTestServer(t *testing.T, id identity.Resolver) (*httptest.Server, *fakeOrderRepo) {
	t.Helper()

	shops := &fakeShopRepo{shops: []catalog.Shop{
		{ID: "shop1", Data: []byte(`{"name":"Anchor"}`)},
		{ID: "shop2", Data: []byte(`{"name":"Harbor"}`)},
	}}
	items := &fakeItemRepo{items: map[string][]catalog.Item{
		"shop1": {
			{ID: "sku1", Price: decimal.RequireFromString("2.50"), Data: []byte(`{"name":"Mug"}`)},
			{ID: "sku2", Price: decimal.RequireFromString("11.90"), Data: []byte(`{"name":"Flag"}`)},
		},
	}}
	orders := &fakeOrderRepo{nextID: "order-1"}

	svc := order.NewService(id, catalog.NewResolver(shops, items), tax.DefaultVAT(), orders)
	srv := httptest.NewServer(NewHandler(shops, items, svc).Routes())
	t.Cleanup(srv.Close)
	return srv, orders
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createOrderBody() map[string]any {
	return map[string]any{
		"shop":       "shop1",
		"locale":     "en-US",
		"address1":   "1 Anchor Way",
		"city":       "Portsmouth",
		"state":      "NH",
		"country":    "US",
		"postalCode": "03801",
		"currency":   "USD",
		"user":       "user-1",
		"items": []map[string]any{
			{"item": "sku1", "quantity": 3},
		},
	}
}

// --- Tests ---

func TestListShops(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, err := http.Get(srv.URL + "/shops")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var shops []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shops))
	require.Len(t, shops, 2)
	assert.Equal(t, "shop1", shops[0]["shop_id"])
	assert.Equal(t, map[string]any{"name": "Anchor"}, shops[0]["data"])
	assert.Equal(t, "shop2", shops[1]["shop_id"])
}

func TestListShopProducts(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/shop/shop1/products", nil, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "shop1", body["shop_id"])
	products, ok := body["products"].([]any)
	require.True(t, ok)
	require.Len(t, products, 2)
	first, ok := products[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sku1", first["id"])
	assert.Equal(t, map[string]any{"name": "Mug"}, first["data"])
}

func TestListShopProducts_UnknownShop(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/shop/ghost/products", nil, nil)

	// Listing never probes shop existence; an unknown shop is an empty list.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ghost", body["shop_id"])
	assert.Empty(t, body["products"])
}

func TestGetOrder_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/order/absent", nil, nil)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "order not found", body["error"])
}

func TestCreateOrder_OK(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", createOrderBody(), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "order-1", body["order_id"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "shop1", data["shop"])
	assert.Equal(t, "user-1", data["user"])
	assert.Equal(t, 7.5, data["total"])
	assert.Equal(t, 8.3, data["total_with_tax"])
	assert.Equal(t, false, data["isPaid"])
	assert.Equal(t, false, data["delivered"])
	assert.NotContains(t, data, "notes")
	assert.NotContains(t, data, "address2")

	items, ok := data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	line, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sku1", line["item"])
	assert.Equal(t, 3.0, line["quantity"])
	assert.Equal(t, 2.5, line["unitValue"])
}

func TestCreateOrder_ThenGet(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/order", createOrderBody(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, fetched := doJSON(t, http.MethodGet, srv.URL+"/order/"+created["order_id"].(string), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, fetched)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})

	resp, err := http.Post(srv.URL+"/order", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid request body", body["error"])
}

func TestCreateOrder_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})
	req := createOrderBody()
	delete(req, "city")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", req, nil)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "field 'city' failed on the 'required' rule", body["error"])
}

func TestCreateOrder_UnknownShop(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})
	req := createOrderBody()
	req["shop"] = "ghost"

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", req, nil)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "shop ghost doesn't exist", body["error"])
}

func TestCreateOrder_UnknownItem(t *testing.T) {
	srv, _ := newTestServer(t, identity.Passthrough{})
	req := createOrderBody()
	req["items"] = []map[string]any{
		{"item": "sku1", "quantity": 1},
		{"item": "ghost", "quantity": 1},
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", req, nil)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "item ghost doesn't exist", body["error"])
}

func TestCreateOrder_APIKey(t *testing.T) {
	pepper := []byte("pepper")
	keys := &staticKeyRepo{info: &identity.KeyInfo{
		ID:      "k1",
		KeyHash: identity.HashKey([]byte("secret"), pepper),
		User:    "key-owner",
	}}
	srv, _ := newTestServer(t, identity.NewAPIKeyResolver(keys, pepper))

	t.Run("valid key", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", createOrderBody(),
			map[string]string{"api_key": "secret"})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "key-owner", data["user"])
	})

	t.Run("missing key", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", createOrderBody(), nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("wrong key", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", createOrderBody(),
			map[string]string{"api_key": "guess"})

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", body["error"])
	})
}

func TestCreateOrder_StoreFailure(t *testing.T) {
	srv, orders := newTestServer(t, identity.Passthrough{})
	orders.createErr = errors.New("connection refused")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/order", createOrderBody(), nil)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "could not create order", body["error"])
}

type staticKeyRepo struct {
	info *identity.KeyInfo
}

func (s *staticKeyRepo) FindByHash(_ context.Context, hash string) (*identity.KeyInfo, error) {
	if s.info != nil && s.info.KeyHash == hash {
		return s.info, nil
	}
	return nil, errors.New("no rows")
}
