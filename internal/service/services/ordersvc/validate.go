package ordersvc

import (
	"github.com/merchkit/storefront/internal/service/models/currency"
	"github.com/merchkit/storefront/internal/service/models/order"
	"github.com/merchkit/storefront/internal/service/models/product"
)

// CartLine is one requested line before validation.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// catalog is the read-only product lookup the validator needs.
type catalog interface {
	Product(id string) (product.Product, bool)
}

// ValidateCart checks every cart line against the catalog and computes the
// order total in integer minor-currency units. The first line's product
// fixes the order currency.
func ValidateCart(
	lines []CartLine,
	cat catalog,
	maxQuantity int64,
) ([]order.LineItem, int64, currency.Currency, error) {
	items := make([]order.LineItem, 0, len(lines))

	var total int64
	var orderCurrency currency.Currency

	for _, line := range lines {
		p, ok := cat.Product(line.ProductID)
		if !ok {
			return nil, 0, "", &UnknownProductError{ProductID: line.ProductID}
		}

		if line.Quantity < 1 || line.Quantity > maxQuantity {
			return nil, 0, "", &InvalidQuantityError{ProductID: line.ProductID, Max: maxQuantity}
		}

		if orderCurrency == "" {
			orderCurrency = p.Currency
		} else if p.Currency != orderCurrency {
			return nil, 0, "", &MixedCurrencyError{
				ProductID: line.ProductID,
				Want:      orderCurrency,
				Got:       p.Currency,
			}
		}

		items = append(items, order.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.PriceCents,
		})
		total += p.PriceCents * line.Quantity
	}

	return items, total, orderCurrency, nil
}
