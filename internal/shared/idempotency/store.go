package idempotency

import (
	"log/slog"
	"sync"
	"time"

	"shopstream/internal/shared/events"
)

const (
	// DefaultTTL is the cross-service dedup window. Specialized consumers may
	// configure a shorter one.
	DefaultTTL = time.Hour

	defaultSweepInterval = 2 * time.Minute
)

// Stats exposes store introspection for observability endpoints and tests.
type Stats struct {
	TotalEntries int    `json:"totalEntries"`
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
}

// Store is a per-process TTL cache of processed-event fingerprints. It makes
// duplicate deliveries cheap to skip; it is not a cross-process guarantee.
// The window between IsProcessed returning false and MarkProcessed running is
// an accepted race: the order-status no-op guard is the authoritative
// convergence mechanism, this store only short-circuits redundant work.
//
// Safe for concurrent use from multiple handler goroutines.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]time.Time // fingerprint -> expiry
	ttl         time.Duration
	serviceName string
	now         func() time.Time
	lastSweep   time.Time
	hits        uint64
	misses      uint64
	logger      *slog.Logger
}

// NewStore builds a store for one consuming service. A non-positive ttl falls
// back to DefaultTTL.
func NewStore(serviceName string, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries:     make(map[string]time.Time),
		ttl:         ttl,
		serviceName: serviceName,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock overrides the time source. Tests use this to exercise expiry.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// IsProcessed reports whether the envelope's fingerprint is present and
// unexpired. It is a pure read and never marks anything.
func (s *Store) IsProcessed(envelope events.Envelope) bool {
	key := Fingerprint(envelope)

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[key]
	if ok && s.now().Before(expiry) {
		s.hits++
		s.logger.Warn("duplicate event detected",
			"event", "event_dedup_hit",
			"module", "internal/shared/idempotency",
			"layer", "shared",
			"fingerprint", key,
			"event_type", envelope.EventType,
			"service", s.serviceName,
		)
		return true
	}
	s.misses++
	return false
}

// MarkProcessed records the envelope's fingerprint with the store TTL and
// returns the fingerprint for logging. Entries are created once and never
// updated; expired entries are reclaimed by a lazy sweep on write.
func (s *Store) MarkProcessed(envelope events.Envelope) string {
	key := Fingerprint(envelope)
	now := s.nowLocked()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = now.Add(s.ttl)
	if now.Sub(s.lastSweep) >= defaultSweepInterval {
		s.sweepLocked(now)
	}

	s.logger.Debug("event marked as processed",
		"event", "event_dedup_marked",
		"module", "internal/shared/idempotency",
		"layer", "shared",
		"fingerprint", key,
		"event_type", envelope.EventType,
		"service", s.serviceName,
	)
	return key
}

// Stats returns entry and hit/miss counts. Expired-but-unswept entries are
// excluded from TotalEntries.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	total := 0
	for _, expiry := range s.entries {
		if now.Before(expiry) {
			total++
		}
	}
	return Stats{TotalEntries: total, Hits: s.hits, Misses: s.misses}
}

// Clear empties the store. Used by tests and administrative resets.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]time.Time)
	s.hits = 0
	s.misses = 0
}

func (s *Store) nowLocked() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) sweepLocked(now time.Time) {
	for key, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, key)
		}
	}
	s.lastSweep = now
}
