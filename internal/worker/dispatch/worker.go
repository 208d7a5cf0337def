package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/merchkit/storefront/internal/dal/interfaces/ichangelogrepo"
	"github.com/merchkit/storefront/internal/service/models/changelog"
	"github.com/merchkit/storefront/internal/service/models/event"
	"github.com/merchkit/storefront/internal/service/models/order"
)

// publisher is the slice of the message bus the worker needs.
type publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Worker drains the change log and republishes order inserts to the fan-out
// exchange. Delivery is at-least-once: a record is deleted only after its
// event was published.
type Worker struct {
	changeLogRepo ichangelogrepo.IChangeLogRepository
	bus           publisher
	exchange      string
	pollInterval  time.Duration
	batchSize     int
	stopCh        chan struct{}
}

// NewWorker creates a new dispatch worker.
func NewWorker(
	changeLogRepo ichangelogrepo.IChangeLogRepository,
	bus publisher,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.dispatch.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.dispatch.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	exchange := viper.GetString("rabbitmq.exchange")
	if exchange == "" {
		exchange = "order-events"
	}

	return &Worker{
		changeLogRepo: changeLogRepo,
		bus:           bus,
		exchange:      exchange,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		stopCh:        make(chan struct{}),
	}
}

// Start begins draining the change log.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Dispatch worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatch worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Dispatch worker stopped")

			return
		case <-ticker.C:
			w.ProcessRecords(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// ProcessRecords drains one batch of change records. A failure on one record
// is retried later and does not stop the rest of the batch.
func (w *Worker) ProcessRecords(ctx context.Context) {
	records, err := w.changeLogRepo.GetPendingRecords(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending change records", "error", err)

		return
	}

	if len(records) == 0 {
		return
	}

	slog.Info("Processing change records", "count", len(records))

	for _, rec := range records {
		if !w.wantsRecord(rec) {
			// The change log is multiplexed: non-insert events and other
			// record kinds are the expected majority and are skipped
			// without noise.
			if err := w.changeLogRepo.Delete(ctx, rec.ID); err != nil {
				slog.Error("Failed to delete skipped change record", "change_id", rec.ID, "error", err)
			}

			continue
		}

		ev, err := normalize(rec)
		if err != nil {
			slog.Error("Failed to normalize change record, dropping", "change_id", rec.ID, "error", err)
			if err := w.changeLogRepo.Delete(ctx, rec.ID); err != nil {
				slog.Error("Failed to delete malformed change record", "change_id", rec.ID, "error", err)
			}

			continue
		}

		body, err := json.Marshal(ev)
		if err != nil {
			slog.Error("Failed to marshal order event", "change_id", rec.ID, "error", err)

			continue
		}

		err = w.bus.Publish(w.exchange, "", amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Body:        body,
		})
		if err != nil {
			newRetryCount := rec.RetryCount + 1
			backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30
			nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

			slog.Warn("Failed to publish order event, will retry",
				"change_id", rec.ID,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)

			if err := w.changeLogRepo.UpdateRetry(ctx, rec.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
				slog.Error("Failed to update retry information", "change_id", rec.ID, "error", err)
			}

			continue
		}

		if err := w.changeLogRepo.Delete(ctx, rec.ID); err != nil {
			slog.Error("Failed to delete change record after publish", "change_id", rec.ID, "error", err)
		} else {
			slog.Info("Order event published", "change_id", rec.ID, "order_sk", rec.SK)
		}
	}
}

// wantsRecord selects newly inserted order records by the sort-key prefix
// convention.
func (w *Worker) wantsRecord(rec changelog.Record) bool {
	return rec.EventName == changelog.EventInsert && strings.HasPrefix(rec.SK, order.SortKeyPrefix)
}

// normalize converts a change record image into the downstream order event.
func normalize(rec changelog.Record) (event.OrderEvent, error) {
	var o order.Order
	if err := json.Unmarshal(rec.Image, &o); err != nil {
		return event.OrderEvent{}, err
	}

	total := o.TotalCents

	return event.OrderEvent{
		OrderID:      o.ID,
		OwnerID:      o.OwnerID,
		ContactEmail: o.ContactEmail,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
		TotalCents:   &total,
		Currency:     o.Currency.String(),
		Items:        o.Items,
	}, nil
}
