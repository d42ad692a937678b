package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, customer_name, customer_email, total_amount, status, notes, created_at, updated_at`

const getOrder = `
SELECT ` + orderColumns + ` FROM orders WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail,
		&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const listOrders = `
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListOrdersParams struct {
	Status pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail,
			&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const createOrder = `
INSERT INTO orders (user_id, customer_name, customer_email, total_amount, status, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns + `
`

type CreateOrderParams struct {
	UserID        pgtype.UUID
	CustomerName  string
	CustomerEmail string
	TotalAmount   pgtype.Numeric
	Status        string
	Notes         pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.UserID, arg.CustomerName, arg.CustomerEmail, arg.TotalAmount, arg.Status, arg.Notes)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail,
		&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, notes = COALESCE($3, notes), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns + `
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
	Notes  pgtype.Text
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.Notes)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail,
		&o.TotalAmount, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const deleteOrder = `
DELETE FROM orders WHERE id = $1
RETURNING id
`

// DeleteOrder removes the order row; order_items go with it via FK cascade.
func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteOrder, id)
	var out uuid.UUID
	err := row.Scan(&out)
	return out, err
}
