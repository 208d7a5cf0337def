package listorders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/order"
	"github.com/merchkit/storefront/internal/service/services/ordersvc"
	"github.com/merchkit/storefront/internal/transport/http/respond"
	"github.com/merchkit/storefront/pkg/http/middleware/identity"
)

// service is an interface for the service layer.
type service interface {
	ListOrders(ctx context.Context, ownerID string, limit int, token string) (ordersvc.ListPage, error)
}

type orderView struct {
	OrderID   string           `json:"orderId"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	Items     []order.LineItem `json:"items"`
	Total     int64            `json:"total"`
	Currency  string           `json:"currency"`
}

type response struct {
	Items         []orderView `json:"items"`
	Limit         int         `json:"limit"`
	NextToken     string      `json:"nextToken,omitempty"`
	ReturnedCount int         `json:"returnedCount"`
}

// ListOrders handles the order listing request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")

		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "limit must be an integer")

			return
		}
		limit = parsed
	}

	page, err := service.ListOrders(r.Context(), id.UserID, limit, r.URL.Query().Get("nextToken"))
	if err != nil {
		if errors.Is(err, cursor.ErrInvalidCursor) || errors.Is(err, ordersvc.ErrInvalidLimit) {
			respond.Error(w, http.StatusBadRequest, err.Error())

			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to list orders")
		slog.Error("Error listing orders", "error", err)

		return
	}

	items := make([]orderView, 0, len(page.Orders))
	for _, o := range page.Orders {
		items = append(items, orderView{
			OrderID:   o.ID,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt,
			Items:     o.Items,
			Total:     o.TotalCents,
			Currency:  o.Currency.String(),
		})
	}

	respond.JSON(w, http.StatusOK, response{
		Items:         items,
		Limit:         page.Limit,
		NextToken:     page.NextToken,
		ReturnedCount: len(items),
	})
}
