// Package service holds business logic that spans multiple store calls
// and needs to run inside a transaction.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/trendifymart/api/internal/database"
)

var (
	ErrMissingCustomerName  = errors.New("customer name is required")
	ErrMissingCustomerEmail = errors.New("customer email is required")
	ErrEmptyItems           = errors.New("order must contain at least one item")
	ErrInvalidProductID     = errors.New("invalid product ID")
	ErrProductNotFound      = errors.New("product not found")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidPrice         = errors.New("price must be a positive decimal")
)

// OrderStore defines the queries the order service needs. Satisfied by
// *database.Queries, including one bound to a transaction via WithTx.
type OrderStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// TxBeginner abstracts pgxpool.Pool so tests can supply their own
// transaction source.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewOrderStore builds an OrderStore bound to the given connection or
// transaction. In production this is a thin wrapper over database.New.
type NewOrderStore func(db database.DBTX) OrderStore

// OrderItemInput is one line of a checkout request.
type OrderItemInput struct {
	ProductID string
	Quantity  int32
	Price     string
	Size      string
	Color     string
}

// OrderInput is a checkout request from the storefront.
type OrderInput struct {
	UserID        *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Notes         string
	Items         []OrderItemInput
}

// OrderResult is a created order together with its items.
type OrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService creates orders atomically: the order row and all of its
// items commit together or not at all.
type OrderService struct {
	db       TxBeginner
	newStore NewOrderStore
}

func NewOrderService(db TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{db: db, newStore: newStore}
}

type validatedItem struct {
	productID uuid.UUID
	quantity  int32
	price     decimal.Decimal
	size      string
	color     string
}

// Create validates the input, verifies every referenced product exists,
// computes the total as the sum of price*quantity, and persists the order
// with its items in a single transaction.
func (s *OrderService) Create(ctx context.Context, input OrderInput) (OrderResult, error) {
	if input.CustomerName == "" {
		return OrderResult{}, ErrMissingCustomerName
	}
	if input.CustomerEmail == "" {
		return OrderResult{}, ErrMissingCustomerEmail
	}
	if len(input.Items) == 0 {
		return OrderResult{}, ErrEmptyItems
	}

	items := make([]validatedItem, 0, len(input.Items))
	for _, it := range input.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return OrderResult{}, ErrInvalidProductID
		}
		if it.Quantity <= 0 {
			return OrderResult{}, ErrInvalidQuantity
		}
		price, err := decimal.NewFromString(it.Price)
		if err != nil || !price.IsPositive() {
			return OrderResult{}, ErrInvalidPrice
		}
		items = append(items, validatedItem{
			productID: productID,
			quantity:  it.Quantity,
			price:     price,
			size:      it.Size,
			color:     it.Color,
		})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return OrderResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	total := decimal.Zero
	for _, it := range items {
		if _, err := store.GetProduct(ctx, it.productID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return OrderResult{}, ErrProductNotFound
			}
			return OrderResult{}, fmt.Errorf("get product %s: %w", it.productID, err)
		}
		total = total.Add(it.price.Mul(decimal.NewFromInt(int64(it.quantity))))
	}

	var userID pgtype.UUID
	if input.UserID != nil {
		userID = pgtype.UUID{Bytes: *input.UserID, Valid: true}
	}
	var notes pgtype.Text
	if input.Notes != "" {
		notes = pgtype.Text{String: input.Notes, Valid: true}
	}

	var totalAmount pgtype.Numeric
	if err := totalAmount.Scan(total.String()); err != nil {
		return OrderResult{}, fmt.Errorf("encode total: %w", err)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:        userID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		TotalAmount:   totalAmount,
		Status:        "pending",
		Notes:         notes,
	})
	if err != nil {
		return OrderResult{}, fmt.Errorf("create order: %w", err)
	}

	created := make([]database.OrderItem, 0, len(items))
	for _, it := range items {
		var price pgtype.Numeric
		if err := price.Scan(it.price.String()); err != nil {
			return OrderResult{}, fmt.Errorf("encode price: %w", err)
		}
		var size, color pgtype.Text
		if it.size != "" {
			size = pgtype.Text{String: it.size, Valid: true}
		}
		if it.color != "" {
			color = pgtype.Text{String: it.color, Valid: true}
		}
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			ProductID: it.productID,
			Quantity:  it.quantity,
			Price:     price,
			Size:      size,
			Color:     color,
		})
		if err != nil {
			return OrderResult{}, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return OrderResult{}, fmt.Errorf("commit tx: %w", err)
	}

	return OrderResult{Order: order, Items: created}, nil
}
