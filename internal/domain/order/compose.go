package order

import (
	"github.com/shopspring/decimal"

	"github.com/oroshi/storefront/internal/domain/catalog"
	"github.com/oroshi/storefront/internal/domain/tax"
)

// Compose builds the persisted order document from an already-validated
// request and already-resolved items. It cannot fail: every referenced
// entity was verified upstream.
//
// The total is the sum of quantity * unitValue over resolved items,
// computed with decimal arithmetic and converted to float64 only at the
// document boundary. Optional fields are carried over only when present and
// non-empty, so an omitted notes field stays absent in storage.
func Compose(req *CreateOrderRequest, resolved []catalog.ResolvedItem, user string, taxes tax.Calculator) *Document {
	items := make([]LineItem, len(resolved))
	total := decimal.Zero
	for i, r := range resolved {
		line := r.UnitValue.Mul(decimal.NewFromFloat(r.Quantity))
		total = total.Add(line)
		items[i] = LineItem{
			Item:      r.Item,
			Quantity:  r.Quantity,
			UnitValue: r.UnitValue.InexactFloat64(),
		}
	}
	total = total.Round(2)

	lines := taxes.Apply(total)
	taxDocs := make([]map[string]float64, len(lines))
	withTax := total
	for i, l := range lines {
		taxDocs[i] = map[string]float64{l.Code: l.Amount.InexactFloat64()}
		withTax = withTax.Add(l.Amount)
	}

	doc := &Document{
		Shop:         req.Shop,
		Locale:       req.Locale,
		Address1:     req.Address1,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		PostalCode:   req.PostalCode,
		Currency:     req.Currency,
		User:         user,
		Items:        items,
		Total:        total.InexactFloat64(),
		Taxes:        taxDocs,
		TotalWithTax: withTax.Round(2).InexactFloat64(),
		IsPaid:       false,
		Delivered:    false,
	}

	if req.Notes != nil && *req.Notes != "" {
		doc.Notes = *req.Notes
	}
	if req.Address2 != nil && *req.Address2 != "" {
		doc.Address2 = *req.Address2
	}

	return doc
}
