package changelog

import (
	"time"
)

// EventName is the change operation kind recorded for a table write.
type EventName string

const (
	EventInsert EventName = "INSERT"
	EventModify EventName = "MODIFY"
	EventRemove EventName = "REMOVE"
)

// Record is one change notification captured in the same transaction as the
// table write it describes. The dispatcher polls these records and republishes
// order inserts to the fan-out exchange; everything else is skipped.
type Record struct {
	ID          int64
	EventName   EventName
	PK          string
	SK          string
	Image       []byte
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
