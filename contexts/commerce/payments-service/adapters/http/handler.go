package httpadapter

import (
	"context"
	"log/slog"

	application "shopstream/contexts/commerce/payments-service/application"
	"shopstream/contexts/commerce/payments-service/application/commands"
	"shopstream/contexts/commerce/payments-service/application/queries"
	"shopstream/contexts/commerce/payments-service/domain/entities"
	httptransport "shopstream/contexts/commerce/payments-service/transport/http"
)

type Handler struct {
	ProcessPayment commands.ProcessPaymentUseCase
	RefundPayment  commands.RefundPaymentUseCase
	GetPayment     queries.GetPaymentUseCase
	ListPayments   queries.ListPaymentsUseCase
	Logger         *slog.Logger
}

// ProcessPaymentHandler godoc
// @Summary Process a payment
// @Description Charges the provider and records the COMPLETED or FAILED outcome.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body httptransport.ProcessPaymentRequest true "Payment payload"
// @Success 201 {object} httptransport.PaymentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /payments [post]
func (h Handler) ProcessPaymentHandler(ctx context.Context, req httptransport.ProcessPaymentRequest) (httptransport.PaymentResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("process payment request received",
		"event", "http_process_payment_received",
		"module", "commerce/payments-service",
		"layer", "transport",
		"order_id", req.OrderID,
		"user_id", req.UserID,
	)

	payment, err := h.ProcessPayment.Execute(ctx, commands.ProcessPaymentCommand{
		OrderID:       req.OrderID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return httptransport.PaymentResponse{}, err
	}
	return httptransport.PaymentResponse{Payment: mapPayment(payment)}, nil
}

// RefundPaymentHandler godoc
// @Summary Refund a payment
// @Description Refunds up to the remaining balance of a completed payment.
// @Tags payments
// @Accept json
// @Produce json
// @Param payment_id path string true "Payment id"
// @Param request body httptransport.RefundPaymentRequest true "Refund payload"
// @Success 200 {object} httptransport.RefundResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /payments/{payment_id}/refund [post]
func (h Handler) RefundPaymentHandler(ctx context.Context, paymentID string, req httptransport.RefundPaymentRequest) (httptransport.RefundResponse, error) {
	refund, err := h.RefundPayment.Execute(ctx, commands.RefundPaymentCommand{
		PaymentID: paymentID,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		return httptransport.RefundResponse{}, err
	}
	return httptransport.RefundResponse{Refund: mapRefund(refund)}, nil
}

// GetPaymentHandler godoc
// @Summary Get one payment
// @Tags payments
// @Produce json
// @Param payment_id path string true "Payment id"
// @Success 200 {object} httptransport.PaymentResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /payments/{payment_id} [get]
func (h Handler) GetPaymentHandler(ctx context.Context, paymentID string) (httptransport.PaymentResponse, error) {
	payment, err := h.GetPayment.Execute(ctx, queries.GetPaymentQuery{PaymentID: paymentID})
	if err != nil {
		return httptransport.PaymentResponse{}, err
	}
	return httptransport.PaymentResponse{Payment: mapPayment(payment)}, nil
}

// ListPaymentsHandler godoc
// @Summary List payments
// @Description Paginated payment history; userID scopes to one user.
// @Tags payments
// @Produce json
// @Param user_id query string false "User id"
// @Param order_id query int false "Order id filter"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} httptransport.ListPaymentsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /payments [get]
func (h Handler) ListPaymentsHandler(ctx context.Context, userID string, orderID int64, status string, page, limit int) (httptransport.ListPaymentsResponse, error) {
	result, err := h.ListPayments.Execute(ctx, queries.ListPaymentsQuery{
		UserID:  userID,
		OrderID: orderID,
		Status:  entities.PaymentStatus(status),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return httptransport.ListPaymentsResponse{}, err
	}

	payments := make([]httptransport.PaymentDTO, 0, len(result.Payments))
	for _, payment := range result.Payments {
		payments = append(payments, mapPayment(payment))
	}
	return httptransport.ListPaymentsResponse{
		Payments: payments,
		Pagination: httptransport.PaginationDTO{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	}, nil
}

func mapPayment(payment entities.Payment) httptransport.PaymentDTO {
	refunds := make([]httptransport.RefundDTO, 0, len(payment.Refunds))
	for _, refund := range payment.Refunds {
		refunds = append(refunds, mapRefund(refund))
	}
	return httptransport.PaymentDTO{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PaymentMethod: payment.PaymentMethod,
		Status:        string(payment.Status),
		FailureReason: payment.FailureReason,
		ProcessedAt:   payment.ProcessedAt,
		Refunds:       refunds,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
}

func mapRefund(refund entities.Refund) httptransport.RefundDTO {
	return httptransport.RefundDTO{
		ID:        refund.ID,
		PaymentID: refund.PaymentID,
		Amount:    refund.Amount,
		Reason:    refund.Reason,
		Status:    string(refund.Status),
		CreatedAt: refund.CreatedAt,
		UpdatedAt: refund.UpdatedAt,
	}
}
