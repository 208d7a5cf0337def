package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/merchkit/storefront/internal/dal/interfaces/ichangelogrepo"
	"github.com/merchkit/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/merchkit/storefront/internal/dal/postgres"
	"github.com/merchkit/storefront/internal/dal/uow"
	"github.com/merchkit/storefront/internal/service/models/changelog"
	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/order"
)

// OrderService is a service for creating and listing orders.
type OrderService struct {
	pgClient *postgres.Client
	catalog  catalog
}

func (s *OrderService) newUOW() unitOfWork {
	return uow.NewUnitOfWork(s.pgClient)
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	ChangeLogRepository() ichangelogrepo.IChangeLogRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithCatalog sets the read-only product catalog for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(cat catalog) option {
	return func(s *OrderService) {
		s.catalog = cat
	}
}

// CreateOrder validates the cart, persists the order and records its change
// event in one transaction. The change record is what the fan-out dispatcher
// later republishes.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	ownerID string,
	contactEmail string,
	lines []CartLine,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(lines) == 0 {
		return order.Order{}, ErrMissingItems
	}

	items, total, cur, err := ValidateCart(lines, s.catalog, viper.GetInt64("orders.max_quantity"))
	if err != nil {
		return order.Order{}, err
	}

	now := time.Now().UTC()
	o := order.Order{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		ContactEmail: contactEmail,
		Status:       order.StatusCreated,
		CreatedAt:    now,
		Items:        items,
		TotalCents:   total,
		Currency:     cur,
	}

	image, err := json.Marshal(o)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to marshal order image: %w", err)
	}

	rec := changelog.Record{
		EventName:   changelog.EventInsert,
		PK:          o.PK(),
		SK:          o.SK(),
		Image:       image,
		MaxRetries:  10,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	if err := work.OrderRepository().Put(ctx, o); err != nil {
		return order.Order{}, err
	}
	if err := work.ChangeLogRepository().Insert(ctx, rec); err != nil {
		return order.Order{}, err
	}
	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// ListPage is one page of order listing results. Limit is the effective
// page size after defaulting.
type ListPage struct {
	Orders    []order.Order
	NextToken string
	Limit     int
}

// ListOrders returns one page of the owner's orders, most recent first. The
// limit must be within [1, 100]; the token, when present, must decode to the
// four-field continuation key.
func (s *OrderService) ListOrders(
	ctx context.Context,
	ownerID string,
	limit int,
	token string,
) (ListPage, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	if limit == 0 {
		limit = viper.GetInt("pagination.default_limit")
	}
	maxLimit := viper.GetInt("pagination.max_limit")
	if limit < 1 || limit > maxLimit {
		return ListPage{}, &InvalidLimitError{Max: maxLimit}
	}

	var start *cursor.Key
	if token != "" {
		key, err := cursor.DecodeKey(token)
		if err != nil {
			return ListPage{}, err
		}
		start = &key
	}

	work := s.newUOW()

	orders, lastKey, err := work.OrderRepository().
		Query(ctx, order.PartitionKeyPrefix+ownerID, limit, start)
	if err != nil {
		return ListPage{}, err
	}

	page := ListPage{Orders: orders, Limit: limit}
	if lastKey != nil {
		page.NextToken = cursor.EncodeKey(*lastKey)
	}

	return page, nil
}
