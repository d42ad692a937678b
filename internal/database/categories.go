package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const categoryColumns = `id, name, slug, description, created_at`

const listCategories = `
SELECT ` + categoryColumns + ` FROM categories ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCategoryByID = `
SELECT ` + categoryColumns + ` FROM categories WHERE id = $1
`

func (q *Queries) GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error) {
	row := q.db.QueryRow(ctx, getCategoryByID, id)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	return c, err
}

const getCategoryBySlug = `
SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1
`

func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	row := q.db.QueryRow(ctx, getCategoryBySlug, slug)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	return c, err
}

const createCategory = `
INSERT INTO categories (name, slug, description)
VALUES ($1, $2, $3)
RETURNING ` + categoryColumns + `
`

type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description pgtype.Text
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Slug, arg.Description)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	return c, err
}

const updateCategory = `
UPDATE categories
SET name = $2, slug = $3, description = $4
WHERE id = $1
RETURNING ` + categoryColumns + `
`

type UpdateCategoryParams struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description pgtype.Text
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory, arg.ID, arg.Name, arg.Slug, arg.Description)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	return c, err
}

const deleteCategory = `
DELETE FROM categories WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteCategory, id)
	var out uuid.UUID
	err := row.Scan(&out)
	return out, err
}

const countProductsByCategory = `
SELECT count(*) FROM products WHERE category_id = $1
`

func (q *Queries) CountProductsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countProductsByCategory, categoryID)
	var n int64
	err := row.Scan(&n)
	return n, err
}
