package marker

import (
	"time"
)

// Status is the delivery state of one notification attempt. Absent is an
// explicit state so callers branch on a closed set instead of comparing raw
// strings.
type Status string

const (
	// StatusAbsent means no marker exists yet for the (order, message) pair.
	StatusAbsent Status = "absent"
	// StatusPending means a delivery attempt started but was not confirmed.
	// A redelivery in this state re-attempts the send.
	StatusPending Status = "pending"
	// StatusSent is terminal: the email went out and redeliveries are
	// skipped entirely.
	StatusSent Status = "sent"
)

// Valid reports whether the status is one of the persisted values. Absent is
// never written, only synthesized on a missing read.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent:
		return true
	default:
		return false
	}
}

// Marker is the persisted delivery record for one (orderId, messageId) pair.
// It carries a snapshot of the rendered notification so retries reproduce the
// exact payload. Retention is handled by the store's TTL, not by this code.
type Marker struct {
	OrderID   string    `json:"orderId"`
	MessageID string    `json:"messageId"`
	Status    Status    `json:"status"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
