package ordersvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/storefront/internal/service/models/currency"
	"github.com/merchkit/storefront/internal/service/models/product"
)

type stubCatalog map[string]product.Product

func (c stubCatalog) Product(id string) (product.Product, bool) {
	p, ok := c[id]

	return p, ok
}

func newStubCatalog() stubCatalog {
	return stubCatalog{
		"prod-1": {ID: "prod-1", Name: "Sticker pack", PriceCents: 1000, Currency: currency.CurrencyUSD},
		"prod-2": {ID: "prod-2", Name: "Mug", PriceCents: 1500, Currency: currency.CurrencyEUR},
		"prod-3": {ID: "prod-3", Name: "Shirt", PriceCents: 2500, Currency: currency.CurrencyUSD},
	}
}

func TestValidateCartComputesTotal(t *testing.T) {
	items, total, cur, err := ValidateCart(
		[]CartLine{{ProductID: "prod-1", Quantity: 2}},
		newStubCatalog(),
		1000,
	)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2000), total)
	assert.Equal(t, currency.CurrencyUSD, cur)
	assert.Equal(t, "Sticker pack", items[0].ProductName)
	assert.Equal(t, int64(1000), items[0].UnitPrice)
}

func TestValidateCartMultipleLines(t *testing.T) {
	items, total, cur, err := ValidateCart(
		[]CartLine{
			{ProductID: "prod-1", Quantity: 1},
			{ProductID: "prod-3", Quantity: 2},
		},
		newStubCatalog(),
		1000,
	)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(6000), total)
	assert.Equal(t, currency.CurrencyUSD, cur)
}

func TestValidateCartUnknownProduct(t *testing.T) {
	_, _, _, err := ValidateCart(
		[]CartLine{{ProductID: "prod-99", Quantity: 1}},
		newStubCatalog(),
		1000,
	)

	var unknownErr *UnknownProductError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "prod-99", unknownErr.ProductID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateCartQuantityBounds(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		wantErr  bool
	}{
		{name: "at max", quantity: 1000, wantErr: false},
		{name: "one above max", quantity: 1001, wantErr: true},
		{name: "zero", quantity: 0, wantErr: true},
		{name: "negative", quantity: -3, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := ValidateCart(
				[]CartLine{{ProductID: "prod-1", Quantity: tc.quantity}},
				newStubCatalog(),
				1000,
			)
			if !tc.wantErr {
				require.NoError(t, err)

				return
			}

			var qtyErr *InvalidQuantityError
			require.ErrorAs(t, err, &qtyErr)
			assert.Equal(t, "prod-1", qtyErr.ProductID)
			assert.Equal(t, int64(1000), qtyErr.Max)
		})
	}
}

func TestValidateCartMixedCurrency(t *testing.T) {
	// The mixed-currency check must not depend on line order.
	carts := [][]CartLine{
		{{ProductID: "prod-1", Quantity: 1}, {ProductID: "prod-2", Quantity: 1}},
		{{ProductID: "prod-2", Quantity: 1}, {ProductID: "prod-1", Quantity: 1}},
	}

	for _, lines := range carts {
		_, _, _, err := ValidateCart(lines, newStubCatalog(), 1000)

		var mixedErr *MixedCurrencyError
		require.ErrorAs(t, err, &mixedErr)
		assert.ErrorIs(t, err, ErrValidation)
	}
}
