package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trendifymart/api/internal/middleware"
	"github.com/trendifymart/api/internal/service"
	"github.com/trendifymart/api/internal/ws"
)

// OrderCreator is the service-layer entry point for checkout.
// Satisfied by *service.OrderService.
type OrderCreator interface {
	Create(ctx context.Context, input service.OrderInput) (service.OrderResult, error)
}

// CheckoutHandler handles storefront order creation.
type CheckoutHandler struct {
	orders OrderCreator
	events OrderEventSink
}

func NewCheckoutHandler(orders OrderCreator, events OrderEventSink) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, events: events}
}

// RegisterRoutes registers the checkout endpoint. Expected to be mounted
// at /api/orders.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

type checkoutItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type checkoutRequest struct {
	CustomerName  string                `json:"customerName"`
	CustomerEmail string                `json:"customerEmail"`
	Notes         string                `json:"notes"`
	Items         []checkoutItemRequest `json:"items"`
}

// Create handles POST /api/orders. A logged-in caller gets the order
// attached to their account; anonymous checkout is allowed.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	input := service.OrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		userID := claims.UserID
		input.UserID = &userID
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Size:      it.Size,
			Color:     it.Color,
		})
	}

	result, err := h.orders.Create(r.Context(), input)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	resp := toOrderResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		resp.Items[i] = toOrderItemResponse(it)
	}

	if h.events != nil {
		if payload, err := json.Marshal(resp); err == nil {
			h.events.BroadcastToAdmins(ws.Event{Type: "order.created", Payload: payload})
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *CheckoutHandler) writeCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCustomerName):
		writeError(w, http.StatusBadRequest, "MISSING_CUSTOMER_NAME", err.Error())
	case errors.Is(err, service.ErrMissingCustomerEmail):
		writeError(w, http.StatusBadRequest, "MISSING_CUSTOMER_EMAIL", err.Error())
	case errors.Is(err, service.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, "EMPTY_ITEMS", err.Error())
	case errors.Is(err, service.ErrInvalidProductID):
		writeError(w, http.StatusBadRequest, "INVALID_PRODUCT_ID", err.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "INVALID_QUANTITY", err.Error())
	case errors.Is(err, service.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, "INVALID_PRICE", err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", err.Error())
	default:
		log.Printf("ERROR: create order: %v", err)
		writeInternalError(w)
	}
}
