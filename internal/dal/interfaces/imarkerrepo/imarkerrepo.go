package imarkerrepo

import (
	"context"

	"github.com/merchkit/storefront/internal/service/models/marker"
)

// IMarkerRepository is the notification marker store contract. Get returns a
// marker with StatusAbsent when no record exists for the pair.
type IMarkerRepository interface {
	Get(ctx context.Context, orderID, messageID string) (marker.Marker, error)
	Put(ctx context.Context, m marker.Marker) error
}
