package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/trendifymart/api/internal/database"
)

// OrderItemStore defines the database methods needed by order item
// handlers. Satisfied by *database.Queries; narrow interface for
// testability.
type OrderItemStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// OrderItemHandler handles order item endpoints. Items are append-only:
// once written they are never modified or removed individually, so PUT
// and DELETE answer 405 before touching the store.
type OrderItemHandler struct {
	store OrderItemStore
}

func NewOrderItemHandler(store OrderItemStore) *OrderItemHandler {
	return &OrderItemHandler{store: store}
}

// RegisterRoutes registers order item endpoints on the given Chi router.
// Expected to be mounted at /api/order-items.
func (h *OrderItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/", h.NotSupported)
	r.Put("/{id}", h.NotSupported)
	r.Delete("/", h.NotSupported)
	r.Delete("/{id}", h.NotSupported)
}

type createOrderItemRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type orderItemListResponse struct {
	OrderItems []orderItemResponse `json:"orderItems"`
}

// List handles GET /api/order-items?orderId=.
func (h *OrderItemHandler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("orderId")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ORDER_ID", "orderId query parameter is required")
		return
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeInternalError(w)
		return
	}

	resp := make([]orderItemResponse, len(items))
	for i, it := range items {
		resp[i] = toOrderItemResponse(it)
	}
	writeJSON(w, http.StatusOK, orderItemListResponse{OrderItems: resp})
}

// Create handles POST /api/order-items.
func (h *OrderItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ORDER_ID", "orderId is required")
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PRODUCT_ID", "productId is required")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PRODUCT_ID", "invalid product ID")
		return
	}
	if req.Quantity == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_QUANTITY", "quantity is required")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_QUANTITY", "quantity must be greater than zero")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		writeError(w, http.StatusBadRequest, "INVALID_PRICE", "price must be a positive decimal")
		return
	}

	if _, err := h.store.GetOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeInternalError(w)
		return
	}

	priceNum, err := decimalToNumeric(price)
	if err != nil {
		log.Printf("ERROR: encode price: %v", err)
		writeInternalError(w)
		return
	}

	item, err := h.store.CreateOrderItem(r.Context(), database.CreateOrderItemParams{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  req.Quantity,
		Price:     priceNum,
		Size:      textOrNull(req.Size),
		Color:     textOrNull(req.Color),
	})
	if err != nil {
		log.Printf("ERROR: create order item: %v", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderItemResponse(item))
}

// NotSupported answers 405 for updates and deletes of order items.
func (h *OrderItemHandler) NotSupported(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "NOT_SUPPORTED", "order items cannot be modified after creation")
}
