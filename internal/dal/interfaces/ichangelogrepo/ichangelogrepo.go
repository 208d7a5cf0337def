package ichangelogrepo

import (
	"context"
	"time"

	"github.com/merchkit/storefront/internal/service/models/changelog"
)

// IChangeLogRepository is the contract for the change-log table written in
// the same transaction as the order insert and drained by the dispatcher.
type IChangeLogRepository interface {
	Insert(ctx context.Context, rec changelog.Record) error
	GetPendingRecords(ctx context.Context, limit int) ([]changelog.Record, error)
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
	Delete(ctx context.Context, id int64) error
}
