package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/orders-service/domain/errors"
	"shopstream/contexts/commerce/orders-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateOrder(ctx context.Context, order entities.Order) (entities.Order, error) {
	row := orderModelFromEntity(order)
	items := make([]orderItemModel, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemModelFromEntity(item))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidOrderRequest
			}
			return err
		}
		for i := range items {
			items[i].OrderID = row.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}
	return r.GetOrder(ctx, row.ID, "")
}

func (r *Repository) GetOrder(ctx context.Context, orderID int64, userID string) (entities.Order, error) {
	var row orderModel
	tx := r.db.WithContext(ctx).Where("id = ?", orderID)
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	if err := tx.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Order{}, domainerrors.ErrOrderNotFound
		}
		return entities.Order{}, err
	}

	var itemRows []orderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&itemRows).
		Error; err != nil {
		return entities.Order{}, err
	}

	return row.toEntity(itemRows), nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID int64, userID string, status entities.OrderStatus, updatedAt time.Time) (entities.Order, error) {
	tx := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Where("id = ?", orderID)
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	result := tx.Updates(map[string]any{
		"status":     string(status),
		"updated_at": updatedAt.UTC(),
	})
	if result.Error != nil {
		return entities.Order{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	return r.GetOrder(ctx, orderID, userID)
}

func (r *Repository) ListOrders(ctx context.Context, filter ports.OrderListFilter) ([]entities.Order, int64, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	tx := r.db.WithContext(ctx).Model(&orderModel{})
	if filter.UserID != "" {
		tx = tx.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []orderModel
	if err := tx.Order("ordered_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	orders := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		var itemRows []orderItemModel
		if err := r.db.WithContext(ctx).
			Where("order_id = ?", row.ID).
			Order("id ASC").
			Find(&itemRows).
			Error; err != nil {
			return nil, 0, err
		}
		orders = append(orders, row.toEntity(itemRows))
	}
	return orders, total, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type orderModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          string    `gorm:"column:user_id"`
	Status          string    `gorm:"column:status"`
	TotalAmount     float64   `gorm:"column:total_amount"`
	ShippingAddress string    `gorm:"column:shipping_address"`
	OrderedAt       time.Time `gorm:"column:ordered_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string {
	return "orders"
}

func orderModelFromEntity(order entities.Order) orderModel {
	return orderModel{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		OrderedAt:       order.OrderedAt.UTC(),
		UpdatedAt:       order.UpdatedAt.UTC(),
	}
}

func (m orderModel) toEntity(items []orderItemModel) entities.Order {
	order := entities.Order{
		ID:              m.ID,
		UserID:          m.UserID,
		Status:          entities.OrderStatus(m.Status),
		TotalAmount:     m.TotalAmount,
		ShippingAddress: m.ShippingAddress,
		OrderedAt:       m.OrderedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	for _, item := range items {
		order.Items = append(order.Items, item.toEntity())
	}
	return order
}

type orderItemModel struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID      int64   `gorm:"column:order_id"`
	ProductID    int64   `gorm:"column:product_id"`
	Quantity     int     `gorm:"column:quantity"`
	Price        float64 `gorm:"column:price"`
	ProductName  string  `gorm:"column:product_name"`
	ProductImage string  `gorm:"column:product_image"`
}

func (orderItemModel) TableName() string {
	return "order_items"
}

func orderItemModelFromEntity(item entities.OrderItem) orderItemModel {
	return orderItemModel{
		ID:           item.ID,
		OrderID:      item.OrderID,
		ProductID:    item.ProductID,
		Quantity:     item.Quantity,
		Price:        item.Price,
		ProductName:  item.ProductName,
		ProductImage: item.ProductImage,
	}
}

func (m orderItemModel) toEntity() entities.OrderItem {
	return entities.OrderItem{
		ID:           m.ID,
		OrderID:      m.OrderID,
		ProductID:    m.ProductID,
		Quantity:     m.Quantity,
		Price:        m.Price,
		ProductName:  m.ProductName,
		ProductImage: m.ProductImage,
	}
}
