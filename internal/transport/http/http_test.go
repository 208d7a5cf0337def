package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/storefront/internal/service/models/currency"
	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/order"
	"github.com/merchkit/storefront/internal/service/models/product"
	"github.com/merchkit/storefront/internal/service/services/catalogsvc"
	"github.com/merchkit/storefront/internal/service/services/ordersvc"
	"github.com/merchkit/storefront/pkg/http/middleware/identity"
)

type fakeOrderService struct {
	createdOrder order.Order
	createErr    error
	listPage     ordersvc.ListPage
	listErr      error
	gotOwner     string
	gotLines     []ordersvc.CartLine
}

func (s *fakeOrderService) CreateOrder(
	_ context.Context,
	ownerID, _ string,
	lines []ordersvc.CartLine,
) (order.Order, error) {
	s.gotOwner = ownerID
	s.gotLines = lines

	return s.createdOrder, s.createErr
}

func (s *fakeOrderService) ListOrders(
	_ context.Context,
	_ string,
	_ int,
	token string,
) (ordersvc.ListPage, error) {
	if token == "bad-token" {
		return ordersvc.ListPage{}, cursor.ErrInvalidCursor
	}

	return s.listPage, s.listErr
}

func newTestServer(t *testing.T, orders *fakeOrderService) *httptest.Server {
	t.Helper()

	viper.Set("pagination.default_limit", 20)
	viper.Set("pagination.max_limit", 100)

	catalog := catalogsvc.NewCatalog([]product.Product{
		{ID: "prod-1", Name: "Sticker pack", PriceCents: 1000, Currency: currency.CurrencyUSD, Available: 5},
		{ID: "prod-2", Name: "Mug", PriceCents: 1500, Currency: currency.CurrencyEUR, Available: 5},
		{ID: "prod-3", Name: "Shirt", PriceCents: 2500, Currency: currency.CurrencyUSD, Available: 5},
	})

	transport := NewHTTPTransport(orders, catalog)
	transport.RegisterRoutes()

	srv := httptest.NewServer(transport.router)
	t.Cleanup(srv.Close)

	return srv
}

func doRequest(t *testing.T, method, url, body string, authenticated bool) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set(identity.HeaderUserID, "u-1")
		req.Header.Set(identity.HeaderUserEmail, "buyer@example.com")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body
}

func TestCreateOrderRequiresIdentity(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/orders", `{"items":[{"productId":"prod-1","quantity":1}]}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decodeBody(t, resp)["error"])
}

func TestCreateOrderHappyPath(t *testing.T) {
	orders := &fakeOrderService{
		createdOrder: order.Order{
			ID:        "o-1",
			OwnerID:   "u-1",
			Status:    order.StatusCreated,
			CreatedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
			Items: []order.LineItem{
				{ProductID: "prod-1", ProductName: "Sticker pack", Quantity: 2, UnitPrice: 1000},
			},
			TotalCents: 2000,
			Currency:   currency.CurrencyUSD,
		},
	}
	srv := newTestServer(t, orders)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/orders", `{"items":[{"productId":"prod-1","quantity":2}]}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "o-1", body["orderId"])
	assert.Equal(t, "CREATED", body["status"])
	assert.Equal(t, float64(2000), body["total"])
	assert.Equal(t, "USD", body["currency"])

	assert.Equal(t, "u-1", orders.gotOwner)
	require.Len(t, orders.gotLines, 1)
	assert.Equal(t, int64(2), orders.gotLines[0].Quantity)
}

func TestCreateOrderValidationFailure(t *testing.T) {
	orders := &fakeOrderService{
		createErr: &ordersvc.MixedCurrencyError{
			ProductID: "prod-2",
			Want:      currency.CurrencyUSD,
			Got:       currency.CurrencyEUR,
		},
	}
	srv := newTestServer(t, orders)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/orders", `{"items":[{"productId":"prod-1","quantity":1},{"productId":"prod-2","quantity":1}]}`, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "mix currencies")
}

func TestCreateOrderEmptyCart(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/orders", `{"items":[]}`, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "at least one item")
}

func TestCreateOrderMalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/orders", `{"items":`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListOrdersRequiresIdentity(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/orders", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListOrdersInvalidCursor(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/orders?nextToken=bad-token", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListOrdersInvalidLimit(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/orders?limit=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListOrdersReturnsPage(t *testing.T) {
	orders := &fakeOrderService{
		listPage: ordersvc.ListPage{
			Orders: []order.Order{
				{ID: "o-2", Status: order.StatusCreated, TotalCents: 500, Currency: currency.CurrencyUSD},
				{ID: "o-1", Status: order.StatusCreated, TotalCents: 900, Currency: currency.CurrencyUSD},
			},
			NextToken: "next-page",
			Limit:     2,
		},
	}
	srv := newTestServer(t, orders)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/orders?limit=2", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["returnedCount"])
	assert.Equal(t, "next-page", body["nextToken"])
	assert.Equal(t, float64(2), body["limit"])
}

func TestListProductsDefaultsAndPages(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/products", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(20), body["limit"])
	assert.Equal(t, float64(3), body["returnedCount"])
}

func TestListProductsInvalidLimit(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	for _, limit := range []string{"0", "101", "ten"} {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/products?limit="+limit, "", false)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
}

func TestListProductsInvalidCursor(t *testing.T) {
	srv := newTestServer(t, &fakeOrderService{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/products?nextToken=!!!", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
