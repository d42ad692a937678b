package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, category_id, name, price, created_at`

const listProducts = `
SELECT ` + productColumns + ` FROM products ORDER BY name
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const listProductsByCategory = `
SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY name
`

func (q *Queries) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProductsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const getProduct = `
SELECT ` + productColumns + ` FROM products WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.CreatedAt)
	return p, err
}

const createProduct = `
INSERT INTO products (category_id, name, price)
VALUES ($1, $2, $3)
RETURNING ` + productColumns + `
`

type CreateProductParams struct {
	CategoryID uuid.UUID
	Name       string
	Price      pgtype.Numeric
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct, arg.CategoryID, arg.Name, arg.Price)
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.CreatedAt)
	return p, err
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
