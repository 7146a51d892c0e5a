package order

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared schema validator. Field names in error messages use
// the JSON names clients actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LineItemRequest is a client-supplied line item. Input only; never
// persisted directly.
type LineItemRequest struct {
	Item     string  `json:"item" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the untrusted order-creation payload. Address2 and
// Notes are pointers so an explicitly sent empty string is distinguishable
// from an absent field.
type CreateOrderRequest struct {
	Shop       string            `json:"shop" validate:"required"`
	Locale     string            `json:"locale" validate:"required"`
	Address1   string            `json:"address1" validate:"required"`
	Address2   *string           `json:"address2"`
	City       string            `json:"city" validate:"required"`
	State      string            `json:"state" validate:"required"`
	Country    string            `json:"country" validate:"required"`
	PostalCode string            `json:"postalCode" validate:"required"`
	Notes      *string           `json:"notes"`
	Currency   string            `json:"currency" validate:"required"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	User       string            `json:"user" validate:"required"`
}

// ValidationError reports the first field that failed schema validation.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s' failed on the '%s' rule", e.Field, e.Rule)
}

// Validate checks the request shape. It is a pure check: no state is
// touched, and on failure the first offending field is reported.
func (r *CreateOrderRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	first := errs[0]
	return &ValidationError{
		Field: first.Field(),
		Rule:  first.Tag(),
	}
}
