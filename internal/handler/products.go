package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trendifymart/api/internal/database"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]database.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	GetCategoryBySlug(ctx context.Context, slug string) (database.Category, error)
}

// ProductHandler serves the public product catalog.
type ProductHandler struct {
	store ProductStore
}

func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product endpoints on the given Chi router.
// Expected to be mounted at /api/products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

type productResponse struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	CreatedAt  time.Time `json:"createdAt"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
}

func toProductResponse(p database.Product) productResponse {
	return productResponse{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Price:      numericToString(p.Price),
		CreatedAt:  p.CreatedAt,
	}
}

// Get handles GET /api/products. With ?id= it returns a single product,
// with ?category= (slug or UUID) a filtered list, otherwise the full
// catalog.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("id"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid product ID")
			return
		}
		product, err := h.store.GetProduct(r.Context(), productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
				return
			}
			log.Printf("ERROR: get product: %v", err)
			writeInternalError(w)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(product))
		return
	}

	var (
		products []database.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		categoryID, parseErr := uuid.Parse(category)
		if parseErr != nil {
			cat, slugErr := h.store.GetCategoryBySlug(r.Context(), category)
			if slugErr != nil {
				if errors.Is(slugErr, pgx.ErrNoRows) {
					writeError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found")
					return
				}
				log.Printf("ERROR: get category by slug: %v", slugErr)
				writeInternalError(w)
				return
			}
			categoryID = cat.ID
		}
		products, err = h.store.ListProductsByCategory(r.Context(), categoryID)
	} else {
		products, err = h.store.ListProducts(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeInternalError(w)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, productListResponse{Products: resp})
}
