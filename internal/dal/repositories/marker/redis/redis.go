package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/merchkit/storefront/internal/dal/redis"
	"github.com/merchkit/storefront/internal/service/models/marker"
)

// MarkerRepository implements the notification marker store on Redis. Keys
// expire after the configured TTL; expiry is the only deletion path.
type MarkerRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMarkerRepository creates a new marker repository.
func NewMarkerRepository(client *redis.Client, ttl time.Duration) *MarkerRepository {
	return &MarkerRepository{
		client: client,
		ttl:    ttl,
	}
}

func markerKey(orderID, messageID string) string {
	return fmt.Sprintf("notify:marker:%s:%s", orderID, messageID)
}

// Get returns the marker for the pair, or a marker with StatusAbsent when no
// record exists.
func (r *MarkerRepository) Get(ctx context.Context, orderID, messageID string) (marker.Marker, error) {
	raw, err := r.client.DB().Get(ctx, markerKey(orderID, messageID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return marker.Marker{
			OrderID:   orderID,
			MessageID: messageID,
			Status:    marker.StatusAbsent,
		}, nil
	}
	if err != nil {
		return marker.Marker{}, fmt.Errorf("failed to read notification marker: %w", err)
	}

	var m marker.Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return marker.Marker{}, fmt.Errorf("failed to unmarshal notification marker: %w", err)
	}

	return m, nil
}

// Put writes the marker, refreshing the retention TTL.
func (r *MarkerRepository) Put(ctx context.Context, m marker.Marker) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal notification marker: %w", err)
	}

	if err := r.client.DB().Set(ctx, markerKey(m.OrderID, m.MessageID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write notification marker: %w", err)
	}

	return nil
}
