package idempotency

import (
	"strconv"
	"strings"

	"shopstream/internal/shared/events"
)

// CorrelationKeys are the optional entity identifiers an event may carry.
// A zero OrderID or empty string means the key is absent.
type CorrelationKeys struct {
	OrderID   int64
	PaymentID string
	RefundID  string
}

// BuildFingerprint derives the dedup key for an event. Present components are
// joined with "-" in a fixed order; absent components are skipped entirely
// rather than rendered as empty placeholders, so keys differ in length when
// optional fields differ in presence. An event with nothing present yields the
// empty string, which is stored and checked like any other key.
//
// Example: ORDER_STATUS_UPDATED-order:123-2025-07-23T12:00:00.000Z
func BuildFingerprint(eventType string, keys CorrelationKeys, emittedAt string) string {
	parts := make([]string, 0, 5)
	if eventType != "" {
		parts = append(parts, eventType)
	}
	if keys.OrderID != 0 {
		parts = append(parts, "order:"+strconv.FormatInt(keys.OrderID, 10))
	}
	if keys.PaymentID != "" {
		parts = append(parts, "payment:"+keys.PaymentID)
	}
	if keys.RefundID != "" {
		parts = append(parts, "refund:"+keys.RefundID)
	}
	if emittedAt != "" {
		parts = append(parts, emittedAt)
	}
	return strings.Join(parts, "-")
}

// Fingerprint derives the dedup key for an envelope.
func Fingerprint(envelope events.Envelope) string {
	return BuildFingerprint(envelope.EventType, CorrelationKeys{
		OrderID:   envelope.OrderID,
		PaymentID: envelope.PaymentID,
		RefundID:  envelope.RefundID,
	}, envelope.Timestamp)
}
