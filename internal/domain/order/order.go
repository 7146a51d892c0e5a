package order

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// LineItem is a priced line inside a persisted order document. The field
// names are the storage contract and must not change.
type LineItem struct {
	Item      string  `json:"item"`
	Quantity  float64 `json:"quantity"`
	UnitValue float64 `json:"unitValue"`
}

// Document is the persisted order aggregate. Optional fields (address2,
// notes) are omitted entirely when empty rather than stored as empty
// strings. The identifier is assigned by the store and is not part of the
// document body.
type Document struct {
	Shop         string               `json:"shop"`
	Locale       string               `json:"locale"`
	Address1     string               `json:"address1"`
	Address2     string               `json:"address2,omitempty"`
	City         string               `json:"city"`
	State        string               `json:"state"`
	Country      string               `json:"country"`
	PostalCode   string               `json:"postalCode"`
	Currency     string               `json:"currency"`
	User         string               `json:"user"`
	Notes        string               `json:"notes,omitempty"`
	Items        []LineItem           `json:"items"`
	Total        float64              `json:"total"`
	Taxes        []map[string]float64 `json:"taxes"`
	TotalWithTax float64              `json:"total_with_tax"`
	IsPaid       bool                 `json:"isPaid"`
	Delivered    bool                 `json:"delivered"`
}

// Record is a stored order as read back from the store: the assigned
// identifier plus the raw document, including store-maintained fields such
// as the update timestamp.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Repository defines persistence operations for orders. Create assigns the
// order its identifier; the returned id is usable for an immediate
// read-back.
type Repository interface {
	Create(ctx context.Context, doc *Document) (string, error)
	GetByID(ctx context.Context, id string) (*Record, error)
}
