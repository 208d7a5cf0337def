package createorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/merchkit/storefront/internal/service/models/order"
	"github.com/merchkit/storefront/internal/service/services/ordersvc"
	"github.com/merchkit/storefront/internal/transport/http/respond"
	"github.com/merchkit/storefront/pkg/http/middleware/identity"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, ownerID, contactEmail string, lines []ordersvc.CartLine) (order.Order, error)
}

type request struct {
	Items []ordersvc.CartLine `json:"items"`
}

type response struct {
	OrderID   string           `json:"orderId"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	Items     []order.LineItem `json:"items"`
	Total     int64            `json:"total"`
	Currency  string           `json:"currency"`
}

// CreateOrder handles the checkout request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")

		return
	}

	var req request
	if err := respond.DecodeJSON(r.Body, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to decode request body")
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if len(req.Items) == 0 {
		respond.Error(w, http.StatusBadRequest, "order must contain at least one item")

		return
	}

	created, err := service.CreateOrder(r.Context(), id.UserID, id.Email, req.Items)
	if err != nil {
		if errors.Is(err, ordersvc.ErrValidation) {
			respond.Error(w, http.StatusBadRequest, err.Error())

			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to create order")
		slog.Error("Error creating order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, response{
		OrderID:   created.ID,
		Status:    string(created.Status),
		CreatedAt: created.CreatedAt,
		Items:     created.Items,
		Total:     created.TotalCents,
		Currency:  created.Currency.String(),
	})
}
