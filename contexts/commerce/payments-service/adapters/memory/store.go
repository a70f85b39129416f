package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	application "shopstream/contexts/commerce/payments-service/application"
	"shopstream/contexts/commerce/payments-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/payments-service/domain/errors"
	"shopstream/contexts/commerce/payments-service/ports"
)

// Store is an in-memory adapter implementing the payments ports for local
// runtime and tests. It is not intended as production persistence.
type Store struct {
	mu       sync.RWMutex
	payments map[string]entities.Payment
	refunds  map[string]entities.Refund
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		payments: make(map[string]entities.Payment),
		refunds:  make(map[string]entities.Refund),
		logger:   application.ResolveLogger(logger),
	}
}

func (s *Store) CreatePayment(_ context.Context, payment entities.Payment) (entities.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments[payment.ID] = payment
	s.logger.Debug("payment stored",
		"event", "memory_payment_created",
		"module", "commerce/payments-service",
		"layer", "adapter",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
	)
	return payment, nil
}

func (s *Store) GetPayment(_ context.Context, paymentID string) (entities.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		return entities.Payment{}, domainerrors.ErrPaymentNotFound
	}
	return s.withRefundsLocked(payment), nil
}

// ListCompletedPaymentsByOrder returns every COMPLETED payment captured for
// the order, oldest first, with refunds attached.
func (s *Store) ListCompletedPaymentsByOrder(_ context.Context, orderID int64) ([]entities.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entities.Payment
	for _, payment := range s.payments {
		if payment.OrderID == orderID && payment.Status == entities.PaymentStatusCompleted {
			matched = append(matched, s.withRefundsLocked(payment))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *Store) UpdatePayment(_ context.Context, payment entities.Payment) (entities.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[payment.ID]; !ok {
		return entities.Payment{}, domainerrors.ErrPaymentNotFound
	}
	stored := payment
	stored.Refunds = nil
	s.payments[payment.ID] = stored
	return s.withRefundsLocked(stored), nil
}

func (s *Store) ListPayments(_ context.Context, filter ports.PaymentListFilter) ([]entities.Payment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entities.Payment
	for _, payment := range s.payments {
		if filter.UserID != "" && payment.UserID != filter.UserID {
			continue
		}
		if filter.OrderID != 0 && payment.OrderID != filter.OrderID {
			continue
		}
		if filter.Status != "" && payment.Status != filter.Status {
			continue
		}
		matched = append(matched, s.withRefundsLocked(payment))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]entities.Payment(nil), matched[start:end]...), total, nil
}

func (s *Store) CreateRefund(_ context.Context, refund entities.Refund) (entities.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[refund.PaymentID]; !ok {
		return entities.Refund{}, domainerrors.ErrPaymentNotFound
	}
	s.refunds[refund.ID] = refund
	return refund, nil
}

func (s *Store) UpdateRefund(_ context.Context, refund entities.Refund) (entities.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refunds[refund.ID]; !ok {
		return entities.Refund{}, domainerrors.ErrPaymentNotFound
	}
	s.refunds[refund.ID] = refund
	return refund, nil
}

func (s *Store) withRefundsLocked(payment entities.Payment) entities.Payment {
	var refunds []entities.Refund
	for _, refund := range s.refunds {
		if refund.PaymentID == payment.ID {
			refunds = append(refunds, refund)
		}
	}
	sort.Slice(refunds, func(i, j int) bool { return refunds[i].CreatedAt.Before(refunds[j].CreatedAt) })
	payment.Refunds = refunds
	return payment
}

// UUIDGenerator mints identifiers for payments and refunds.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
