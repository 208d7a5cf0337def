package notifysvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/merchkit/storefront/internal/dal/interfaces/imarkerrepo"
	"github.com/merchkit/storefront/internal/service/models/event"
	"github.com/merchkit/storefront/internal/service/models/marker"
)

// EmailSender delivers one rendered notification email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NotifyService turns order events into at-most-one observable email per
// (orderId, messageId) pair. The persisted marker is the only concurrency
// control: pending permits a resend, sent suppresses everything.
type NotifyService struct {
	markerRepo imarkerrepo.IMarkerRepository
	sender     EmailSender
}

// option is a function that configures the NotifyService.
type option func(*NotifyService)

// MustNewNotifyService creates a new NotifyService.
func MustNewNotifyService(opts ...option) *NotifyService {
	s := &NotifyService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithMarkerRepository sets the marker repository for the NotifyService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMarkerRepository(repo imarkerrepo.IMarkerRepository) option {
	return func(s *NotifyService) {
		s.markerRepo = repo
	}
}

// WithEmailSender sets the email sender for the NotifyService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEmailSender(sender EmailSender) option {
	return func(s *NotifyService) {
		s.sender = sender
	}
}

// ProcessMessage handles one queue delivery. A nil return means the message
// is done (processed or deliberately dropped); an error means the delivery
// must be retried by the queue.
func (s *NotifyService) ProcessMessage(ctx context.Context, messageID string, body []byte) error {
	ctx, span := otel.Tracer("service").Start(ctx, "NotifyService.ProcessMessage")
	defer span.End()

	ev, err := event.ParseOrderEvent(body)
	if err != nil {
		// Poison messages must never block the queue: log and drop.
		slog.Warn("Dropping malformed order event", "message_id", messageID, "error", err)

		return nil
	}
	if err := ev.Validate(); err != nil {
		slog.Warn("Dropping invalid order event", "message_id", messageID, "error", err)

		return nil
	}

	html, err := renderNotification(ev)
	if err != nil {
		slog.Error("Failed to render notification", "message_id", messageID, "order_id", ev.OrderID, "error", err)

		return nil
	}

	existing, err := s.markerRepo.Get(ctx, ev.OrderID, messageID)
	if err != nil {
		return fmt.Errorf("failed to read marker for order %s: %w", ev.OrderID, err)
	}
	if existing.Status != marker.StatusAbsent && !existing.Status.Valid() {
		// A corrupt marker is never overwritten with pending: propagate so
		// the delivery retries once the marker is repaired or expires.
		return fmt.Errorf("corrupt marker status %q for order %s", existing.Status, ev.OrderID)
	}

	now := time.Now().UTC()

	switch existing.Status {
	case marker.StatusSent:
		slog.Info("Notification already sent, skipping",
			"order_id", ev.OrderID,
			"message_id", messageID,
		)

		return nil
	case marker.StatusPending:
		// Redelivery before the send was confirmed: re-attempt the send
		// without rewriting the pending marker.
		slog.Info("Retrying pending notification",
			"order_id", ev.OrderID,
			"message_id", messageID,
		)
	default:
		pending := marker.Marker{
			OrderID:   ev.OrderID,
			MessageID: messageID,
			Status:    marker.StatusPending,
			Payload:   []byte(html),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.markerRepo.Put(ctx, pending); err != nil {
			return fmt.Errorf("failed to write pending marker for order %s: %w", ev.OrderID, err)
		}
		existing = pending
	}

	subject := fmt.Sprintf("Your order %s", ev.OrderID)
	if err := s.sender.Send(ctx, ev.ContactEmail, subject, html); err != nil {
		// The marker is absent or pending here, both of which permit a
		// retry, so the failure propagates and triggers redelivery.
		return fmt.Errorf("failed to dispatch email for order %s: %w", ev.OrderID, err)
	}

	existing.Status = marker.StatusSent
	existing.UpdatedAt = time.Now().UTC()
	if err := s.markerRepo.Put(ctx, existing); err != nil {
		// Best effort: a redelivery after this failure sees pending and
		// resends, which is the accepted residual duplicate-email risk.
		slog.Error("Failed to record sent marker",
			"order_id", ev.OrderID,
			"message_id", messageID,
			"error", err,
		)
	}

	slog.Info("Notification dispatched", "order_id", ev.OrderID, "message_id", messageID)

	return nil
}
