package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KGODTAO/bookshop-api/pkg/httputil"
	"github.com/KGODTAO/bookshop-api/pkg/validator"

	"github.com/KGODTAO/bookshop-api/internal/domain"
	"github.com/KGODTAO/bookshop-api/internal/repository"
	"github.com/KGODTAO/bookshop-api/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOrderLineRequest is one order line in the create request.
type CreateOrderLineRequest struct {
	BookID   string `json:"book_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the JSON request body for creating an order.
type CreateOrderRequest struct {
	Lines []CreateOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes string                   `json:"notes" validate:"max=2000"`
}

// UpdateOrderRequest is the JSON request body for updating an order.
type UpdateOrderRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=new in_progress done canceled"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// --- Handlers ---

// CreateOrder handles POST /api/v1/orders
// The order owner is always the authenticated caller.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	lines := make([]service.CreateOrderLineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.CreateOrderLineInput{
			BookID:   line.BookID,
			Quantity: line.Quantity,
		}
	}

	order, err := h.service.CreateOrder(r.Context(), actorFromRequest(r), service.CreateOrderInput{
		Lines: lines,
		Notes: req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// ListOrders handles GET /api/v1/orders
// Non-admin callers only ever see their own orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, ok := orderFilterFromQuery(w, r)
	if !ok {
		return
	}

	orders, total, err := h.service.ListOrders(r.Context(), actorFromRequest(r), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), actorFromRequest(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// UpdateOrder handles PATCH /api/v1/orders/{id}
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), actorFromRequest(r), id.String(), service.UpdateOrderInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// DeleteOrder handles DELETE /api/v1/orders/{id}. Orders are never
// deleted; the policy rejects the operation for every caller.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), actorFromRequest(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// --- Query helpers ---

func orderFilterFromQuery(w http.ResponseWriter, r *http.Request) (repository.OrderFilter, bool) {
	page, perPage, ok := paginationFromQuery(w, r)
	if !ok {
		return repository.OrderFilter{}, false
	}
	filter := repository.OrderFilter{Page: page, PerPage: perPage}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		if !domain.IsValidStatus(v) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "status must be one of: new, in_progress, done, canceled"},
			})
			return repository.OrderFilter{}, false
		}
		filter.Status = &v
	}
	if v := q.Get("total_sum_from"); v != "" {
		sum, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "total_sum_from must be a valid number"},
			})
			return repository.OrderFilter{}, false
		}
		filter.TotalSumFrom = &sum
	}
	if v := q.Get("total_sum_to"); v != "" {
		sum, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "total_sum_to must be a valid number"},
			})
			return repository.OrderFilter{}, false
		}
		filter.TotalSumTo = &sum
	}
	if v := q.Get("created_at_after"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "created_at_after must be an RFC3339 timestamp"},
			})
			return repository.OrderFilter{}, false
		}
		filter.CreatedAfter = &ts
	}
	if v := q.Get("created_at_before"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "created_at_before must be an RFC3339 timestamp"},
			})
			return repository.OrderFilter{}, false
		}
		filter.CreatedBefore = &ts
	}
	if v := q.Get("book"); v != "" {
		filter.BookTitle = &v
	}
	// Admins may scope the listing to one user.
	if v := q.Get("user_id"); v != "" {
		filter.UserID = &v
	}

	return filter, true
}
