package order

import (
	"time"

	"github.com/merchkit/storefront/internal/service/models/currency"
)

// Status represents the order lifecycle state. Orders are immutable after
// checkout, so CREATED is the only state written by this service.
type Status string

const StatusCreated Status = "CREATED"

// SortKeyPrefix tags order records in the multiplexed orders table. The
// change fan-out dispatcher uses it to tell order inserts apart from other
// record kinds sharing the table.
const SortKeyPrefix = "ORDER#"

// PartitionKeyPrefix namespaces the owner partition.
const PartitionKeyPrefix = "USER#"

// LineItem is one validated cart line inside an order.
type LineItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
}

// Order represents an order in the system.
type Order struct {
	ID           string            `json:"orderId"`
	OwnerID      string            `json:"ownerId"`
	ContactEmail string            `json:"email"`
	Status       Status            `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	Items        []LineItem        `json:"items"`
	TotalCents   int64             `json:"total"`
	Currency     currency.Currency `json:"currency"`
}

// PK returns the owner partition key.
func (o *Order) PK() string {
	return PartitionKeyPrefix + o.OwnerID
}

// SK returns the order sort key.
func (o *Order) SK() string {
	return SortKeyPrefix + o.ID
}

// GSI1SK returns the secondary-index sort key used for reverse-chronological
// listing. The order id suffix keeps keys unique for orders created in the
// same nanosecond.
func (o *Order) GSI1SK() string {
	return "TS#" + o.CreatedAt.UTC().Format(time.RFC3339Nano) + "#" + o.ID
}
