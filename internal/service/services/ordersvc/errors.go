package ordersvc

import (
	"errors"
	"fmt"

	"github.com/merchkit/storefront/internal/service/models/currency"
)

// ErrValidation is the root of every cart validation failure. Handlers map
// anything wrapping it to a client error.
var ErrValidation = errors.New("invalid order")

// ErrMissingItems is returned for an empty cart.
var ErrMissingItems = fmt.Errorf("%w: order must contain at least one item", ErrValidation)

// ErrInvalidLimit is the root of every out-of-bounds page size failure.
var ErrInvalidLimit = errors.New("invalid limit")

// InvalidLimitError carries the configured upper bound so the message never
// drifts from the check.
type InvalidLimitError struct {
	Max int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("limit must be between 1 and %d", e.Max)
}

func (e *InvalidLimitError) Unwrap() error {
	return ErrInvalidLimit
}

// UnknownProductError names a cart line referencing no catalog product.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %q", e.ProductID)
}

func (e *UnknownProductError) Unwrap() error {
	return ErrValidation
}

// InvalidQuantityError names a cart line with a quantity outside [1, Max].
type InvalidQuantityError struct {
	ProductID string
	Max       int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for product %q: must be between 1 and %d", e.ProductID, e.Max)
}

func (e *InvalidQuantityError) Unwrap() error {
	return ErrValidation
}

// MixedCurrencyError names the first cart line whose currency differs from
// the order's currency. Orders never mix currencies and nothing converts.
type MixedCurrencyError struct {
	ProductID string
	Want      currency.Currency
	Got       currency.Currency
}

func (e *MixedCurrencyError) Error() string {
	return fmt.Sprintf(
		"product %q is priced in %s but the order is in %s: orders cannot mix currencies",
		e.ProductID, e.Got, e.Want,
	)
}

func (e *MixedCurrencyError) Unwrap() error {
	return ErrValidation
}
