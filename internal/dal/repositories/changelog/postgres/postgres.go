package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/merchkit/storefront/internal/service/models/changelog"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChangeLogRepository implements the change-log repository for PostgreSQL.
type ChangeLogRepository struct {
	conn Querier
}

// NewChangeLogRepository creates a new change-log repository.
func NewChangeLogRepository(conn Querier) *ChangeLogRepository {
	return &ChangeLogRepository{
		conn: conn,
	}
}

// Insert adds a new change record. Called inside the same transaction as the
// table write it describes.
func (r *ChangeLogRepository) Insert(ctx context.Context, rec changelog.Record) error {
	query, args, err := sq.Insert("change_log").
		Columns(
			"event_name",
			"pk",
			"sk",
			"image",
			"retry_count",
			"max_retries",
			"last_error",
			"created_at",
			"updated_at",
			"next_retry_at",
		).
		Values(
			string(rec.EventName),
			rec.PK,
			rec.SK,
			rec.Image,
			rec.RetryCount,
			rec.MaxRetries,
			rec.LastError,
			rec.CreatedAt,
			rec.UpdatedAt,
			rec.NextRetryAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert change record: %w", err)
	}

	return nil
}

// GetPendingRecords retrieves change records that are ready for dispatch.
func (r *ChangeLogRepository) GetPendingRecords(
	ctx context.Context,
	limit int,
) ([]changelog.Record, error) {
	query, args, err := sq.Select(
		"id",
		"event_name",
		"pk",
		"sk",
		"image",
		"retry_count",
		"max_retries",
		"last_error",
		"created_at",
		"updated_at",
		"next_retry_at",
	).
		From("change_log").
		Where(sq.LtOrEq{"next_retry_at": time.Now()}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_retry_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query change records: %w", err)
	}
	defer rows.Close()

	var records []changelog.Record
	for rows.Next() {
		var rec changelog.Record
		var eventName string
		err := rows.Scan(
			&rec.ID,
			&eventName,
			&rec.PK,
			&rec.SK,
			&rec.Image,
			&rec.RetryCount,
			&rec.MaxRetries,
			&rec.LastError,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&rec.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change record: %w", err)
		}
		rec.EventName = changelog.EventName(eventName)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change records: %w", err)
	}

	return records, nil
}

// UpdateRetry stores retry bookkeeping after a failed dispatch.
func (r *ChangeLogRepository) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	query, args, err := sq.Update("change_log").
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update change record retry: %w", err)
	}

	return nil
}

// Delete removes a change record after a successful dispatch or skip.
func (r *ChangeLogRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("change_log").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete change record: %w", err)
	}

	return nil
}
