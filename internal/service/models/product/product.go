package product

import (
	"github.com/merchkit/storefront/internal/service/models/currency"
)

// Product is a catalog entry. The catalog is read-only: products are loaded
// once at startup and never mutated afterwards.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PriceCents  int64             `json:"priceCents"`
	Currency    currency.Currency `json:"currency"`
	Available   int64             `json:"available"`
}
