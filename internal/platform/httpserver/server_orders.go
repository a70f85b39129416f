package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ordersservice "shopstream/contexts/commerce/orders-service"
	ordererrors "shopstream/contexts/commerce/orders-service/domain/errors"
	orderhttp "shopstream/contexts/commerce/orders-service/transport/http"
)

// MountOrders registers the orders service routes. The user identity comes
// from the X-User-Id header; read routes accept an absent header as an
// unscoped admin view.
func (s *Server) MountOrders(module ordersservice.Module) {
	s.mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req orderhttp.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
		if req.UserID == "" {
			req.UserID = r.Header.Get("X-User-Id")
		}
		resp, err := module.Handler.CreateOrderHandler(r.Context(), req)
		if err != nil {
			writeOrderDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	})

	s.mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))
		userID := query.Get("user_id")
		if userID == "" {
			userID = r.Header.Get("X-User-Id")
		}
		resp, err := module.Handler.ListOrdersHandler(r.Context(), userID, query.Get("status"), page, limit)
		if err != nil {
			writeOrderDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	s.mux.HandleFunc("GET /api/orders/{order_id}", func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := parseOrderID(w, r)
		if !ok {
			return
		}
		resp, err := module.Handler.GetOrderHandler(r.Context(), orderID, r.Header.Get("X-User-Id"))
		if err != nil {
			writeOrderDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	s.mux.HandleFunc("PUT /api/orders/{order_id}/status", func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := parseOrderID(w, r)
		if !ok {
			return
		}
		var req orderhttp.UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
		resp, err := module.Handler.UpdateOrderStatusHandler(r.Context(), orderID, r.Header.Get("X-User-Id"), req)
		if err != nil {
			writeOrderDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	s.mux.HandleFunc("POST /api/orders/{order_id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := parseOrderID(w, r)
		if !ok {
			return
		}
		resp, err := module.Handler.CancelOrderHandler(r.Context(), orderID, r.Header.Get("X-User-Id"))
		if err != nil {
			writeOrderDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orderID, err := strconv.ParseInt(r.PathValue("order_id"), 10, 64)
	if err != nil {
		writeOrderError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be an integer")
		return 0, false
	}
	return orderID, true
}

func writeOrderDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ordererrors.ErrOrderNotFound):
		writeOrderError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, ordererrors.ErrInvalidOrderStatus):
		writeOrderError(w, http.StatusBadRequest, "invalid_order_status", err.Error())
	case errors.Is(err, ordererrors.ErrOrderNotCancellable):
		writeOrderError(w, http.StatusConflict, "order_not_cancellable", err.Error())
	case errors.Is(err, ordererrors.ErrInvalidOrderRequest),
		errors.Is(err, ordererrors.ErrEmptyOrder):
		writeOrderError(w, http.StatusBadRequest, "invalid_order_request", err.Error())
	default:
		writeOrderError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeOrderError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orderhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
