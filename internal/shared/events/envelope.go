package events

import "time"

// Event types exchanged between services. The string values are part of the
// wire contract and must match what every consumer switches on.
const (
	TypeOrderCreated       = "ORDER_CREATED"
	TypeOrderStatusUpdated = "ORDER_STATUS_UPDATED"
	TypeOrderCancelled     = "ORDER_CANCELLED"

	TypePaymentRequested = "PAYMENT_REQUESTED"
	TypePaymentCompleted = "PAYMENT_COMPLETED"
	TypePaymentFailed    = "PAYMENT_FAILED"

	TypeInventoryReserveRequested = "INVENTORY_RESERVE_REQUESTED"
	TypeInventoryReserved         = "INVENTORY_RESERVED"
	TypeInventoryInsufficient     = "INVENTORY_INSUFFICIENT"

	TypeShipmentCreated   = "SHIPMENT_CREATED"
	TypeDeliveryCompleted = "DELIVERY_COMPLETED"

	TypeRefundCompleted = "REFUND_COMPLETED"
	TypeRefundFailed    = "REFUND_FAILED"
)

// Envelope is the event shape published to every topic. A common header
// (type, correlation ids, timestamp, origin tag) is shared by all event
// families; the per-family snapshot fields carry the domain payload.
//
// PublishedBy identifies the producing service and drives self-origin
// suppression in consumers. Envelopes without it are treated as external.
type Envelope struct {
	EventType   string  `json:"eventType"`
	OrderID     int64   `json:"orderId,omitempty"`
	PaymentID   string  `json:"paymentId,omitempty"`
	RefundID    string  `json:"refundId,omitempty"`
	UserID      string  `json:"userId,omitempty"`
	Status      string  `json:"status,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Timestamp   string  `json:"timestamp"`
	PublishedBy string  `json:"publishedBy,omitempty"`

	Order   *OrderSnapshot    `json:"orderData,omitempty"`
	Payment *PaymentSnapshot  `json:"paymentData,omitempty"`
	Refund  *RefundSnapshot   `json:"refundData,omitempty"`
	Items   []ReservationItem `json:"items,omitempty"`
}

// OrderSnapshot is the order state carried on order events.
type OrderSnapshot struct {
	ID              int64               `json:"id"`
	UserID          string              `json:"userId"`
	Status          string              `json:"status"`
	TotalAmount     float64             `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress,omitempty"`
	Items           []OrderItemSnapshot `json:"orderItems,omitempty"`
	OrderedAt       time.Time           `json:"orderedAt"`
}

type OrderItemSnapshot struct {
	ProductID   int64   `json:"productId"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ProductName string  `json:"productName,omitempty"`
}

// PaymentSnapshot is the payment state carried on payment events.
type PaymentSnapshot struct {
	ID            string  `json:"id"`
	OrderID       int64   `json:"orderId"`
	UserID        string  `json:"userId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Status        string  `json:"status"`
	FailureReason string  `json:"failureReason,omitempty"`
}

// RefundSnapshot is the refund state carried on refund events.
type RefundSnapshot struct {
	ID        string  `json:"id"`
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
	Status    string  `json:"status"`
}

// ReservationItem is one line of an inventory reservation request.
type ReservationItem struct {
	ProductID   int64  `json:"productId"`
	Quantity    int    `json:"quantity"`
	ProductName string `json:"productName,omitempty"`
}

// timestampLayout renders millisecond-precision UTC timestamps, matching the
// ISO-8601 strings the wire contract carries (e.g. 2025-07-23T12:00:00.000Z).
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t as the envelope timestamp string. Producers call
// this once per emission; the value doubles as the fingerprint disambiguator,
// so two distinct emissions for the same entity must not share it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses an envelope timestamp. Consumers only need this for
// diagnostics; dedup fingerprints use the raw string.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
