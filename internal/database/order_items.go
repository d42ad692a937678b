package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, order_id, product_id, quantity, price, size, color, created_at`

const listOrderItemsByOrder = `
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.Price, &it.Size, &it.Color, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, price, size, color)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns + `
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
	Size      pgtype.Text
	Color     pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.Quantity, arg.Price, arg.Size, arg.Color)
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
		&it.Price, &it.Size, &it.Color, &it.CreatedAt)
	return it, err
}
