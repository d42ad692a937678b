package database

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// TxBeginner starts a new database transaction. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SeedParams controls the admin account created by Seed.
type SeedParams struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type seedCategory struct {
	name string
	slug string
	desc string
}

type seedProduct struct {
	categorySlug string
	name         string
	price        string
}

var seedCategories = []seedCategory{
	{"Men's Clothing", "mens-clothing", "Shirts, trousers and jackets for men"},
	{"Women's Clothing", "womens-clothing", "Dresses, tops and skirts for women"},
	{"Footwear", "footwear", "Sneakers, boots and sandals"},
	{"Accessories", "accessories", "Bags, belts and watches"},
}

var seedProducts = []seedProduct{
	{"mens-clothing", "Classic Oxford Shirt", "39.99"},
	{"mens-clothing", "Slim Fit Chinos", "49.99"},
	{"womens-clothing", "Floral Summer Dress", "59.99"},
	{"womens-clothing", "High-Waist Skirt", "34.99"},
	{"footwear", "Canvas Sneakers", "44.99"},
	{"footwear", "Leather Ankle Boots", "89.99"},
	{"accessories", "Woven Leather Belt", "24.99"},
	{"accessories", "Minimalist Watch", "129.99"},
}

// Seed populates the catalog and creates the admin account. It runs in a
// single transaction and skips rows that already exist, so calling it
// repeatedly is safe.
func Seed(ctx context.Context, pool TxBeginner, params SeedParams) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	catIDs := make(map[string]uuid.UUID, len(seedCategories))
	for _, c := range seedCategories {
		id, err := seedOneCategory(ctx, tx, c)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.slug, err)
		}
		catIDs[c.slug] = id
	}

	for _, p := range seedProducts {
		if err := seedOneProduct(ctx, tx, catIDs[p.categorySlug], p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.name, err)
		}
	}

	if err := seedAdmin(ctx, tx, params); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	return tx.Commit(ctx)
}

func seedOneCategory(ctx context.Context, tx pgx.Tx, c seedCategory) (uuid.UUID, error) {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM categories WHERE slug = $1`, c.slug).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, err
	}

	var newID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3) RETURNING id`,
		c.name, c.slug, c.desc,
	).Scan(&newID)
	if err != nil {
		return uuid.Nil, err
	}
	log.Printf("Created category %q (ID: %s)", c.name, newID)
	return newID, nil
}

func seedOneProduct(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID, p seedProduct) error {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT id FROM products WHERE category_id = $1 AND name = $2`,
		categoryID, p.name,
	).Scan(&existingID)
	if err == nil {
		return nil
	}
	if err != pgx.ErrNoRows {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO products (category_id, name, price) VALUES ($1, $2, $3)`,
		categoryID, p.name, p.price,
	)
	if err == nil {
		log.Printf("Created product %q", p.name)
	}
	return err
}

func seedAdmin(ctx context.Context, tx pgx.Tx, params SeedParams) error {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, params.AdminEmail).Scan(&existingID)
	if err == nil {
		log.Printf("User %q already exists (ID: %s), skipping", params.AdminEmail, existingID)
		return nil
	}
	if err != pgx.ErrNoRows {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var newID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO users (name, email, hashed_password, role) VALUES ($1, $2, $3, 'admin') RETURNING id`,
		params.AdminName, params.AdminEmail, string(hashed),
	).Scan(&newID)
	if err != nil {
		return err
	}
	log.Printf("Created admin user %q (ID: %s)", params.AdminEmail, newID)
	return nil
}
