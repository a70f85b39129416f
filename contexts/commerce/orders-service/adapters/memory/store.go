package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	application "shopstream/contexts/commerce/orders-service/application"
	"shopstream/contexts/commerce/orders-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/orders-service/domain/errors"
	"shopstream/contexts/commerce/orders-service/ports"
)

// Store is an in-memory adapter implementing the orders ports for local
// runtime and tests. It is not intended as production persistence.
type Store struct {
	mu       sync.RWMutex
	orders   map[int64]entities.Order
	sequence int64
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		orders: make(map[int64]entities.Order),
		logger: application.ResolveLogger(logger),
	}
}

func (s *Store) CreateOrder(_ context.Context, order entities.Order) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++
	order.ID = s.sequence
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = order

	s.logger.Debug("order stored",
		"event", "memory_order_created",
		"module", "commerce/orders-service",
		"layer", "adapter",
		"order_id", order.ID,
	)
	return order, nil
}

func (s *Store) GetOrder(_ context.Context, orderID int64, userID string) (entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(orderID, userID)
}

func (s *Store) UpdateOrderStatus(_ context.Context, orderID int64, userID string, status entities.OrderStatus, updatedAt time.Time) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.findLocked(orderID, userID)
	if err != nil {
		return entities.Order{}, err
	}
	order.Status = status
	order.UpdatedAt = updatedAt.UTC()
	s.orders[order.ID] = order
	return order, nil
}

func (s *Store) ListOrders(_ context.Context, filter ports.OrderListFilter) ([]entities.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []entities.Order
	for _, order := range s.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].OrderedAt.Equal(matched[j].OrderedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].OrderedAt.After(matched[j].OrderedAt)
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
	return append([]entities.Order(nil), matched[start:end]...), total, nil
}

func (s *Store) findLocked(orderID int64, userID string) (entities.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	if userID != "" && order.UserID != userID {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	return order, nil
}
