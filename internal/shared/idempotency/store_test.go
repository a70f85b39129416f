package idempotency

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"shopstream/internal/shared/events"
)

func testEnvelope(orderID int64, timestamp string) events.Envelope {
	return events.Envelope{
		EventType: "ORDER_STATUS_UPDATED",
		OrderID:   orderID,
		Timestamp: timestamp,
	}
}

func TestStoreMarkAndCheck(t *testing.T) {
	store := NewStore("orders-service", time.Hour, nil)
	envelope := testEnvelope(1, "2025-07-23T12:00:00.000Z")

	if store.IsProcessed(envelope) {
		t.Fatal("fresh envelope must not be processed")
	}
	fingerprint := store.MarkProcessed(envelope)
	if fingerprint != "ORDER_STATUS_UPDATED-order:1-2025-07-23T12:00:00.000Z" {
		t.Fatalf("unexpected fingerprint %q", fingerprint)
	}
	if !store.IsProcessed(envelope) {
		t.Fatal("marked envelope must be processed")
	}
}

func TestStoreEntriesExpire(t *testing.T) {
	current := time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)
	store := NewStore("orders-service", time.Hour, nil).WithClock(func() time.Time { return current })

	envelope := testEnvelope(2, "2025-07-23T12:00:00.000Z")
	store.MarkProcessed(envelope)
	if !store.IsProcessed(envelope) {
		t.Fatal("entry must be present inside the ttl window")
	}

	current = current.Add(time.Hour + time.Second)
	if store.IsProcessed(envelope) {
		t.Fatal("entry must expire after the ttl window")
	}
}

func TestStoreSweepReclaimsExpiredEntries(t *testing.T) {
	current := time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)
	store := NewStore("orders-service", time.Minute, nil).WithClock(func() time.Time { return current })

	for i := int64(0); i < 10; i++ {
		store.MarkProcessed(testEnvelope(i, fmt.Sprintf("2025-07-23T12:00:%02d.000Z", i)))
	}

	// Past TTL and past the sweep interval; the next write reclaims the lot.
	current = current.Add(5 * time.Minute)
	store.MarkProcessed(testEnvelope(99, "2025-07-23T13:00:00.000Z"))

	stats := store.Stats()
	if stats.TotalEntries != 1 {
		t.Fatalf("expected 1 live entry after sweep, got %d", stats.TotalEntries)
	}
}

func TestStoreStatsCountHitsAndMisses(t *testing.T) {
	store := NewStore("payments-service", time.Hour, nil)
	envelope := testEnvelope(3, "2025-07-23T12:00:00.000Z")

	store.IsProcessed(envelope)
	store.MarkProcessed(envelope)
	store.IsProcessed(envelope)
	store.IsProcessed(envelope)

	stats := store.Stats()
	if stats.Hits != 2 {
		t.Fatalf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Fatalf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore("orders-service", time.Hour, nil)
	store.MarkProcessed(testEnvelope(4, "2025-07-23T12:00:00.000Z"))
	store.Clear()

	if store.IsProcessed(testEnvelope(4, "2025-07-23T12:00:00.000Z")) {
		t.Fatal("cleared store must not report processed entries")
	}
	if stats := store.Stats(); stats.TotalEntries != 0 {
		t.Fatalf("expected empty store, got %d entries", stats.TotalEntries)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore("orders-service", time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				envelope := testEnvelope(int64(n), fmt.Sprintf("2025-07-23T12:%02d:00.000Z", j%60))
				store.IsProcessed(envelope)
				store.MarkProcessed(envelope)
			}
		}(i)
	}
	wg.Wait()
}
