package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/merchkit/storefront/internal/service/models/order"
)

// OrderEvent is the normalized event republished for every newly inserted
// order. It is what downstream consumers (email, analytics) receive.
type OrderEvent struct {
	OrderID      string           `json:"orderId"`
	OwnerID      string           `json:"ownerId"`
	ContactEmail string           `json:"email"`
	Status       string           `json:"status"`
	CreatedAt    string           `json:"createdAt,omitempty"`
	TotalCents   *int64           `json:"total,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	Items        []order.LineItem `json:"items,omitempty"`
}

// envelope is the generic pub/sub wrapper some producers put around the
// event payload.
type envelope struct {
	Message string `json:"message"`
}

// ParseOrderEvent decodes a queue message body. The body is either the order
// event JSON itself or the event serialized into the "message" field of a
// pub/sub envelope; both shapes are handled by one parse step.
func ParseOrderEvent(body []byte) (OrderEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		body = []byte(env.Message)
	}

	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return OrderEvent{}, fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	return ev, nil
}

// Validate checks the fields required before any notification state
// transition happens. A failing event is dropped by the caller, never
// retried.
func (e *OrderEvent) Validate() error {
	if e.OrderID == "" {
		return errors.New("order event has no order id")
	}
	if e.ContactEmail == "" {
		return errors.New("order event has no contact email")
	}
	if _, err := mail.ParseAddress(e.ContactEmail); err != nil {
		return fmt.Errorf("order event has invalid contact email: %w", err)
	}
	if e.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339, e.CreatedAt); err != nil {
			return fmt.Errorf("order event has invalid creation timestamp: %w", err)
		}
	}

	return nil
}
