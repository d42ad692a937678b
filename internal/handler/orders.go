package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/trendifymart/api/internal/database"
	"github.com/trendifymart/api/internal/enum"
	"github.com/trendifymart/api/internal/ws"
)

// OrderStore defines the database methods needed by admin order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// OrderEventSink receives order change events for the admin live feed.
// Satisfied by *ws.Hub.
type OrderEventSink interface {
	BroadcastToAdmins(event ws.Event)
}

// OrderHandler handles admin order endpoints.
type OrderHandler struct {
	store  OrderStore
	events OrderEventSink
}

// NewOrderHandler creates a new OrderHandler. events may be nil when no
// live feed is wired.
func NewOrderHandler(store OrderStore, events OrderEventSink) *OrderHandler {
	return &OrderHandler{store: store, events: events}
}

// RegisterRoutes registers admin order endpoints on the given Chi router.
// Expected to be mounted at /api/admin/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/bulk-update", h.BulkUpdate)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type updateOrderRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type bulkUpdateRequest struct {
	OrderIDs []string `json:"orderIds"`
	Status   string   `json:"status"`
	Notes    string   `json:"notes"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        *string             `json:"userId"`
	CustomerName  string              `json:"customerName"`
	CustomerEmail string              `json:"customerEmail"`
	TotalAmount   string              `json:"totalAmount"`
	Status        string              `json:"status"`
	Notes         *string             `json:"notes"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"orderId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	Price     string    `json:"price"`
	Size      *string   `json:"size"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type bulkUpdateError struct {
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

type bulkUpdateResponse struct {
	SuccessCount int               `json:"successCount"`
	ErrorCount   int               `json:"errorCount"`
	Results      []orderResponse   `json:"results"`
	Errors       []bulkUpdateError `json:"errors"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   numericToString(o.TotalAmount),
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.UserID.Valid {
		s := uuid.UUID(o.UserID.Bytes).String()
		resp.UserID = &s
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	return resp
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:        it.ID,
		OrderID:   it.OrderID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Price:     numericToString(it.Price),
		CreatedAt: it.CreatedAt,
	}
	if it.Size.Valid {
		resp.Size = &it.Size.String
	}
	if it.Color.Valid {
		resp.Color = &it.Color.String
	}
	return resp
}

// --- Handlers ---

// List handles GET /api/admin/orders with optional status filter and
// limit/offset pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !enum.IsValidOrderStatus(s) {
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "invalid status")
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeInternalError(w)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Get handles GET /api/admin/orders/{id}, returning the order with its items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeInternalError(w)
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeInternalError(w)
		return
	}

	resp := toOrderResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = toOrderItemResponse(it)
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PUT /api/admin/orders/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "MISSING_STATUS", "status is required")
		return
	}
	if !enum.IsValidOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "invalid status")
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: req.Status,
		Notes:  textOrNull(req.Notes),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeInternalError(w)
		return
	}

	resp := toOrderResponse(updated)
	h.publishOrderEvent("order.status_updated", resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/admin/orders/{id}. The order and its items
// are removed outright.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid order ID")
		return
	}

	if _, err := h.store.DeleteOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeInternalError(w)
		return
	}

	h.publishOrderEvent("order.deleted", orderResponse{ID: orderID})
	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdate handles PUT /api/admin/orders/bulk-update. Each order is
// updated independently and in sequence; failures are collected rather
// than rolled back, and the response is always 200 with separate success
// and error lists.
func (h *OrderHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if len(req.OrderIDs) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_ORDER_IDS", "orderIds are required")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "MISSING_STATUS", "status is required")
		return
	}
	if !enum.IsValidOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "invalid status")
		return
	}

	resp := bulkUpdateResponse{
		Results: []orderResponse{},
		Errors:  []bulkUpdateError{},
	}

	for _, idStr := range req.OrderIDs {
		orderID, err := uuid.Parse(idStr)
		if err != nil {
			resp.Errors = append(resp.Errors, bulkUpdateError{OrderID: idStr, Error: "invalid order ID"})
			continue
		}

		updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
			ID:     orderID,
			Status: req.Status,
			Notes:  textOrNull(req.Notes),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.Errors = append(resp.Errors, bulkUpdateError{OrderID: idStr, Error: "order not found"})
			} else {
				log.Printf("ERROR: bulk update order %s: %v", idStr, err)
				resp.Errors = append(resp.Errors, bulkUpdateError{OrderID: idStr, Error: "internal server error"})
			}
			continue
		}

		orderResp := toOrderResponse(updated)
		h.publishOrderEvent("order.status_updated", orderResp)
		resp.Results = append(resp.Results, orderResp)
	}

	resp.SuccessCount = len(resp.Results)
	resp.ErrorCount = len(resp.Errors)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) publishOrderEvent(eventType string, order orderResponse) {
	if h.events == nil {
		return
	}
	payload, err := json.Marshal(order)
	if err != nil {
		log.Printf("ERROR: marshal order event: %v", err)
		return
	}
	h.events.BroadcastToAdmins(ws.Event{Type: eventType, Payload: payload})
}
