package catalogsvc

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/product"
)

// Catalog is the read-only product catalog. It is constructed once at
// startup and passed by reference; nothing mutates it afterwards.
type Catalog struct {
	products []product.Product
	byID     map[string]product.Product
}

// MustNewCatalog loads the catalog from the configured JSON file.
func MustNewCatalog() *Catalog {
	path := viper.GetString("catalog.path")

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("Failed to read catalog file %s: %v", path, err))
	}

	var products []product.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		panic(fmt.Sprintf("Failed to parse catalog file %s: %v", path, err))
	}

	return NewCatalog(products)
}

// NewCatalog builds a catalog from an explicit product list.
func NewCatalog(products []product.Product) *Catalog {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &Catalog{
		products: products,
		byID:     byID,
	}
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (product.Product, bool) {
	p, ok := c.byID[id]

	return p, ok
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}

// ListPage is one page of catalog listing results.
type ListPage struct {
	Items     []product.Product
	NextToken string
}

// List returns one page of products in catalog order. The token, when
// present, must decode to an offset within the catalog; an undecodable token
// is a client error.
func (c *Catalog) List(limit int, token string) (ListPage, error) {
	offset := 0
	if token != "" {
		var err error
		offset, err = cursor.DecodeOffset(token, len(c.products))
		if err != nil {
			return ListPage{}, err
		}
	}

	end := offset + limit
	if end > len(c.products) {
		end = len(c.products)
	}

	page := ListPage{
		Items: c.products[offset:end],
	}
	if end < len(c.products) {
		page.NextToken = cursor.EncodeOffset(end)
	}

	return page, nil
}
