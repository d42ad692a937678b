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
	"github.com/shopspring/decimal"
	"github.com/trendifymart/api/internal/database"
	"github.com/trendifymart/api/internal/ledger"
)

// TransactionSynthesizer derives a payment record from an order.
// Satisfied by *ledger.Fabricator.
type TransactionSynthesizer interface {
	Fabricate(orderID uuid.UUID, amount decimal.Decimal, orderStatus string, processedAt time.Time) ledger.Transaction
}

// TransactionOrderStore is the slice of the store transactions need.
// Satisfied by *database.Queries.
type TransactionOrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// TransactionHandler serves the admin transaction view. Transactions are
// synthesized from orders on every request and never stored.
type TransactionHandler struct {
	store TransactionOrderStore
	synth TransactionSynthesizer
}

func NewTransactionHandler(store TransactionOrderStore, synth TransactionSynthesizer) *TransactionHandler {
	return &TransactionHandler{store: store, synth: synth}
}

// RegisterRoutes registers transaction endpoints on the given Chi router.
// Expected to be mounted at /api/admin/transactions.
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Synthesize)
}

// transactionResponse is the wire shape of a synthesized transaction,
// with money fields rendered as fixed two-decimal strings.
type transactionResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"orderId"`
	Gateway     string    `json:"gateway"`
	Amount      string    `json:"amount"`
	Fee         string    `json:"fee"`
	Net         string    `json:"net"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processedAt"`
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

type synthesizeTransactionRequest struct {
	OrderID string `json:"orderId"`
}

func toTransactionResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		OrderID:     tx.OrderID,
		Gateway:     tx.Gateway,
		Amount:      tx.Amount.StringFixed(2),
		Fee:         tx.Fee.StringFixed(2),
		Net:         tx.Net.StringFixed(2),
		Status:      tx.Status,
		ProcessedAt: tx.ProcessedAt,
	}
}

// List handles GET /api/admin/transactions. One transaction per order,
// derived on the fly.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
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

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		log.Printf("ERROR: list orders for transactions: %v", err)
		writeInternalError(w)
		return
	}

	resp := make([]transactionResponse, len(orders))
	for i, o := range orders {
		tx := h.synth.Fabricate(o.ID, numericToDecimal(o.TotalAmount), o.Status, o.UpdatedAt)
		resp[i] = toTransactionResponse(tx)
	}

	writeJSON(w, http.StatusOK, transactionListResponse{Transactions: resp})
}

// Synthesize handles POST /api/admin/transactions, deriving a
// transaction for one order.
func (h *TransactionHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeTransactionRequest
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

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
			return
		}
		log.Printf("ERROR: get order for transaction: %v", err)
		writeInternalError(w)
		return
	}

	tx := h.synth.Fabricate(order.ID, numericToDecimal(order.TotalAmount), order.Status, order.UpdatedAt)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}
