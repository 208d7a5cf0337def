package catalogsvc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/storefront/internal/service/models/currency"
	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/product"
)

func testCatalog(n int) *Catalog {
	products := make([]product.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, product.Product{
			ID:         fmt.Sprintf("prod-%d", i+1),
			Name:       fmt.Sprintf("Product %d", i+1),
			PriceCents: int64((i + 1) * 100),
			Currency:   currency.CurrencyUSD,
			Available:  10,
		})
	}

	return NewCatalog(products)
}

func TestProductLookup(t *testing.T) {
	cat := testCatalog(3)

	p, ok := cat.Product("prod-2")
	require.True(t, ok)
	assert.Equal(t, "Product 2", p.Name)

	_, ok = cat.Product("prod-99")
	assert.False(t, ok)
}

func TestListFirstPage(t *testing.T) {
	cat := testCatalog(5)

	page, err := cat.List(2, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "prod-1", page.Items[0].ID)
	assert.NotEmpty(t, page.NextToken)
}

func TestListWalksAllPages(t *testing.T) {
	cat := testCatalog(5)

	var seen []string
	token := ""
	for {
		page, err := cat.List(2, token)
		require.NoError(t, err)
		for _, p := range page.Items {
			seen = append(seen, p.ID)
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	assert.Equal(t, []string{"prod-1", "prod-2", "prod-3", "prod-4", "prod-5"}, seen)
}

func TestListLastPageHasNoToken(t *testing.T) {
	cat := testCatalog(4)

	page, err := cat.List(10, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 4)
	assert.Empty(t, page.NextToken)
}

func TestListRejectsInvalidToken(t *testing.T) {
	cat := testCatalog(3)

	_, err := cat.List(2, "garbage-token")
	assert.ErrorIs(t, err, cursor.ErrInvalidCursor)
}
