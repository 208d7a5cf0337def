package redisrepo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/storefront/internal/dal/redis"
	"github.com/merchkit/storefront/internal/service/models/marker"
)

func newTestRepo(t *testing.T) (*MarkerRepository, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))

	return NewMarkerRepository(client, time.Hour), srv
}

func TestGetAbsent(t *testing.T) {
	repo, _ := newTestRepo(t)

	m, err := repo.Get(context.Background(), "o-1", "m-1")
	require.NoError(t, err)
	assert.Equal(t, marker.StatusAbsent, m.Status)
	assert.Equal(t, "o-1", m.OrderID)
	assert.Equal(t, "m-1", m.MessageID)
}

func TestPutGetRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	original := marker.Marker{
		OrderID:   "o-1",
		MessageID: "m-1",
		Status:    marker.StatusPending,
		Payload:   []byte("<p>order o-1</p>"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Put(ctx, original))

	got, err := repo.Get(ctx, "o-1", "m-1")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestStatusTransition(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	m := marker.Marker{OrderID: "o-1", MessageID: "m-1", Status: marker.StatusPending}
	require.NoError(t, repo.Put(ctx, m))

	m.Status = marker.StatusSent
	require.NoError(t, repo.Put(ctx, m))

	got, err := repo.Get(ctx, "o-1", "m-1")
	require.NoError(t, err)
	assert.Equal(t, marker.StatusSent, got.Status)
}

func TestMarkerExpiry(t *testing.T) {
	repo, srv := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, marker.Marker{OrderID: "o-1", MessageID: "m-1", Status: marker.StatusSent}))

	srv.FastForward(2 * time.Hour)

	got, err := repo.Get(ctx, "o-1", "m-1")
	require.NoError(t, err)
	assert.Equal(t, marker.StatusAbsent, got.Status)
}
