package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"shopstream/contexts/commerce/payments-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/payments-service/domain/errors"
	"shopstream/contexts/commerce/payments-service/ports"
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

func (r *Repository) CreatePayment(ctx context.Context, payment entities.Payment) (entities.Payment, error) {
	row := paymentModelFromEntity(payment)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Payment{}, domainerrors.ErrInvalidPaymentRequest
		}
		return entities.Payment{}, err
	}
	return r.GetPayment(ctx, row.ID)
}

func (r *Repository) GetPayment(ctx context.Context, paymentID string) (entities.Payment, error) {
	var row paymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Payment{}, domainerrors.ErrPaymentNotFound
		}
		return entities.Payment{}, err
	}
	return r.attachRefunds(ctx, row)
}

func (r *Repository) ListCompletedPaymentsByOrder(ctx context.Context, orderID int64) ([]entities.Payment, error) {
	var rows []paymentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, string(entities.PaymentStatusCompleted)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	payments := make([]entities.Payment, 0, len(rows))
	for _, row := range rows {
		payment, err := r.attachRefunds(ctx, row)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (r *Repository) UpdatePayment(ctx context.Context, payment entities.Payment) (entities.Payment, error) {
	result := r.db.WithContext(ctx).
		Model(&paymentModel{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"status":         string(payment.Status),
			"external_id":    payment.ExternalID,
			"failure_reason": payment.FailureReason,
			"processed_at":   utcTimePtr(payment.ProcessedAt),
			"updated_at":     payment.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.Payment{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Payment{}, domainerrors.ErrPaymentNotFound
	}
	return r.GetPayment(ctx, payment.ID)
}

func (r *Repository) ListPayments(ctx context.Context, filter ports.PaymentListFilter) ([]entities.Payment, int64, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	tx := r.db.WithContext(ctx).Model(&paymentModel{})
	if filter.UserID != "" {
		tx = tx.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		tx = tx.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []paymentModel
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	payments := make([]entities.Payment, 0, len(rows))
	for _, row := range rows {
		payment, err := r.attachRefunds(ctx, row)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}
	return payments, total, nil
}

func (r *Repository) CreateRefund(ctx context.Context, refund entities.Refund) (entities.Refund, error) {
	row := refundModelFromEntity(refund)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Refund{}, domainerrors.ErrInvalidRefundRequest
		}
		return entities.Refund{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateRefund(ctx context.Context, refund entities.Refund) (entities.Refund, error) {
	result := r.db.WithContext(ctx).
		Model(&refundModel{}).
		Where("id = ?", refund.ID).
		Updates(map[string]any{
			"status":      string(refund.Status),
			"external_id": refund.ExternalID,
			"updated_at":  refund.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.Refund{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Refund{}, domainerrors.ErrPaymentNotFound
	}

	var row refundModel
	if err := r.db.WithContext(ctx).Where("id = ?", refund.ID).First(&row).Error; err != nil {
		return entities.Refund{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) attachRefunds(ctx context.Context, row paymentModel) (entities.Payment, error) {
	var refundRows []refundModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", row.ID).
		Order("created_at ASC").
		Find(&refundRows).
		Error; err != nil {
		return entities.Payment{}, err
	}
	return row.toEntity(refundRows), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type paymentModel struct {
	ID            string     `gorm:"column:id;primaryKey"`
	OrderID       int64      `gorm:"column:order_id"`
	UserID        string     `gorm:"column:user_id"`
	Amount        float64    `gorm:"column:amount"`
	Currency      string     `gorm:"column:currency"`
	PaymentMethod string     `gorm:"column:payment_method"`
	Status        string     `gorm:"column:status"`
	ExternalID    string     `gorm:"column:external_id"`
	FailureReason string     `gorm:"column:failure_reason"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string {
	return "payments"
}

func paymentModelFromEntity(payment entities.Payment) paymentModel {
	return paymentModel{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PaymentMethod: payment.PaymentMethod,
		Status:        string(payment.Status),
		ExternalID:    payment.ExternalID,
		FailureReason: payment.FailureReason,
		ProcessedAt:   utcTimePtr(payment.ProcessedAt),
		CreatedAt:     payment.CreatedAt.UTC(),
		UpdatedAt:     payment.UpdatedAt.UTC(),
	}
}

func (m paymentModel) toEntity(refunds []refundModel) entities.Payment {
	payment := entities.Payment{
		ID:            m.ID,
		OrderID:       m.OrderID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		PaymentMethod: m.PaymentMethod,
		Status:        entities.PaymentStatus(m.Status),
		ExternalID:    m.ExternalID,
		FailureReason: m.FailureReason,
		ProcessedAt:   utcTimePtr(m.ProcessedAt),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
	for _, refund := range refunds {
		payment.Refunds = append(payment.Refunds, refund.toEntity())
	}
	return payment
}

type refundModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	PaymentID  string    `gorm:"column:payment_id"`
	Amount     float64   `gorm:"column:amount"`
	Reason     string    `gorm:"column:reason"`
	Status     string    `gorm:"column:status"`
	ExternalID string    `gorm:"column:external_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (refundModel) TableName() string {
	return "refunds"
}

func refundModelFromEntity(refund entities.Refund) refundModel {
	return refundModel{
		ID:         refund.ID,
		PaymentID:  refund.PaymentID,
		Amount:     refund.Amount,
		Reason:     refund.Reason,
		Status:     string(refund.Status),
		ExternalID: refund.ExternalID,
		CreatedAt:  refund.CreatedAt.UTC(),
		UpdatedAt:  refund.UpdatedAt.UTC(),
	}
}

func (m refundModel) toEntity() entities.Refund {
	return entities.Refund{
		ID:         m.ID,
		PaymentID:  m.PaymentID,
		Amount:     m.Amount,
		Reason:     m.Reason,
		Status:     entities.RefundStatus(m.Status),
		ExternalID: m.ExternalID,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func utcTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
