package postgresrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/merchkit/storefront/internal/service/models/currency"
	"github.com/merchkit/storefront/internal/service/models/cursor"
	"github.com/merchkit/storefront/internal/service/models/order"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so the repository
// can run inside or outside a unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderDal represents the order row in the keyed, indexed orders table.
type OrderDal struct {
	PK           string
	SK           string
	GSI1PK       string
	GSI1SK       string
	OrderID      string
	OwnerID      string
	ContactEmail string
	Status       string
	TotalCents   int64
	Currency     string
	Items        []byte
	CreatedAt    time.Time
}

// ToModel converts OrderDal to the service layer Order model.
func (d *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(d.Currency)
	if err != nil {
		return nil, err
	}

	var items []order.LineItem
	if len(d.Items) > 0 {
		if err := json.Unmarshal(d.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
		}
	}

	return &order.Order{
		ID:           d.OrderID,
		OwnerID:      d.OwnerID,
		ContactEmail: d.ContactEmail,
		Status:       order.Status(d.Status),
		CreatedAt:    d.CreatedAt,
		Items:        items,
		TotalCents:   d.TotalCents,
		Currency:     cur,
	}, nil
}

type PostgresOrderRepository struct {
	conn Querier
}

func NewPostgresOrderRepository(conn Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Put inserts one order keyed by (pk, sk) with the secondary-index columns
// populated for reverse-chronological listing.
func (r *PostgresOrderRepository) Put(ctx context.Context, o order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query, args, err := sq.Insert("orders").
		Columns(
			"pk",
			"sk",
			"gsi1pk",
			"gsi1sk",
			"order_id",
			"owner_id",
			"contact_email",
			"status",
			"total_cents",
			"currency",
			"items",
			"created_at",
		).
		Values(
			o.PK(),
			o.SK(),
			o.PK(),
			o.GSI1SK(),
			o.ID,
			o.OwnerID,
			o.ContactEmail,
			o.Status,
			o.TotalCents,
			o.Currency.String(),
			items,
			o.CreatedAt.UTC(),
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Query returns at most limit orders for the owner partition ordered by the
// secondary sort key descending, plus a continuation key when more rows may
// exist. The start key is exclusive.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	ownerPK string,
	limit int,
	start *cursor.Key,
) ([]order.Order, *cursor.Key, error) {
	builder := sq.Select(
		"pk",
		"sk",
		"gsi1pk",
		"gsi1sk",
		"order_id",
		"owner_id",
		"contact_email",
		"status",
		"total_cents",
		"currency",
		"items",
		"created_at",
	).
		From("orders").
		Where(sq.Eq{"gsi1pk": ownerPK}).
		OrderBy("gsi1sk DESC", "sk DESC").
		Limit(uint64(limit) + 1).
		PlaceholderFormat(sq.Dollar)

	if start != nil {
		builder = builder.Where(sq.Expr("(gsi1sk, sk) < (?, ?)", start.GSI1SK, start.SK))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var dals []OrderDal
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.PK,
			&dal.SK,
			&dal.GSI1PK,
			&dal.GSI1SK,
			&dal.OrderID,
			&dal.OwnerID,
			&dal.ContactEmail,
			&dal.Status,
			&dal.TotalCents,
			&dal.Currency,
			&dal.Items,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan order: %w", err)
		}
		dals = append(dals, dal)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows iteration error: %w", err)
	}

	var lastKey *cursor.Key
	if len(dals) > limit {
		dals = dals[:limit]
		tail := dals[len(dals)-1]
		lastKey = &cursor.Key{
			PK:     tail.PK,
			SK:     tail.SK,
			GSI1PK: tail.GSI1PK,
			GSI1SK: tail.GSI1SK,
		}
	}

	result := make([]order.Order, 0, len(dals))
	for i := range dals {
		model, err := dals[i].ToModel()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	return result, lastKey, nil
}
