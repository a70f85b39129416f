package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	paymentsservice "shopstream/contexts/commerce/payments-service"
	paymenterrors "shopstream/contexts/commerce/payments-service/domain/errors"
	paymenthttp "shopstream/contexts/commerce/payments-service/transport/http"
)

// MountPayments registers the payments service routes.
func (s *Server) MountPayments(module paymentsservice.Module) {
	s.mux.HandleFunc("POST /api/payments", func(w http.ResponseWriter, r *http.Request) {
		var req paymenthttp.ProcessPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
		if req.UserID == "" {
			req.UserID = r.Header.Get("X-User-Id")
		}
		resp, err := module.Handler.ProcessPaymentHandler(r.Context(), req)
		if err != nil {
			writePaymentDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	})

	s.mux.HandleFunc("GET /api/payments", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))
		orderID, _ := strconv.ParseInt(query.Get("order_id"), 10, 64)
		userID := query.Get("user_id")
		if userID == "" {
			userID = r.Header.Get("X-User-Id")
		}
		resp, err := module.Handler.ListPaymentsHandler(r.Context(), userID, orderID, query.Get("status"), page, limit)
		if err != nil {
			writePaymentDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	s.mux.HandleFunc("GET /api/payments/{payment_id}", func(w http.ResponseWriter, r *http.Request) {
		resp, err := module.Handler.GetPaymentHandler(r.Context(), r.PathValue("payment_id"))
		if err != nil {
			writePaymentDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	s.mux.HandleFunc("POST /api/payments/{payment_id}/refund", func(w http.ResponseWriter, r *http.Request) {
		var req paymenthttp.RefundPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
		resp, err := module.Handler.RefundPaymentHandler(r.Context(), r.PathValue("payment_id"), req)
		if err != nil {
			writePaymentDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func writePaymentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymenterrors.ErrPaymentNotFound):
		writePaymentError(w, http.StatusNotFound, "payment_not_found", err.Error())
	case errors.Is(err, paymenterrors.ErrPaymentNotRefundable):
		writePaymentError(w, http.StatusConflict, "payment_not_refundable", err.Error())
	case errors.Is(err, paymenterrors.ErrRefundExceedsRemaining):
		writePaymentError(w, http.StatusConflict, "refund_exceeds_remaining", err.Error())
	case errors.Is(err, paymenterrors.ErrInvalidPaymentRequest),
		errors.Is(err, paymenterrors.ErrInvalidRefundRequest):
		writePaymentError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writePaymentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePaymentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, paymenthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
