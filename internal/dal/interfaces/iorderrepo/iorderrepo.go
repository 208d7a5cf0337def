package iorderrepo

import (
	"context"

	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/order"
)

// IOrderRepository is the durable order store contract. Put must make the
// record retrievable through both the primary and the secondary key
// immediately after it returns.
type IOrderRepository interface {
	Put(ctx context.Context, o order.Order) error
	Query(ctx context.Context, ownerPK string, limit int, start *cursor.Key) ([]order.Order, *cursor.Key, error)
}
