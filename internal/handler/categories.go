package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/trendifymart/api/internal/database"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (database.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (database.Category, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CountProductsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// CategoryHandler handles category CRUD endpoints. Categories are
// addressed by an id or slug query parameter rather than a path segment.
type CategoryHandler struct {
	store CategoryStore
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// RegisterRoutes registers category endpoints on the given Chi router.
// Expected to be mounted at /api/categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/", h.Create)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	resp := categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
	}
	if c.Description.Valid {
		resp.Description = &c.Description.String
	}
	return resp
}

// --- Handlers ---

// Get returns a single category when an id or slug query parameter is
// present, otherwise the full list.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("id") != "" || r.URL.Query().Get("slug") != "" {
		category, ok := h.resolveCategory(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toCategoryResponse(category))
		return
	}

	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeInternalError(w)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new category. The slug is derived from the name when not
// supplied explicitly.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = GenerateSlug(req.Name)
	}
	if slug == "" {
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "name must contain alphanumeric characters")
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		Name:        req.Name,
		Slug:        slug,
		Description: textOrNull(req.Description),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "SLUG_EXISTS", "category slug already exists")
			return
		}
		log.Printf("ERROR: create category: %v", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Update modifies the category addressed by the id or slug query
// parameter. The stored slug is kept unless a new one is supplied.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	category, ok := h.resolveCategory(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}

	slug := category.Slug
	if req.Slug != "" {
		slug = req.Slug
	}

	updated, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:          category.ID,
		Name:        req.Name,
		Slug:        slug,
		Description: textOrNull(req.Description),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "SLUG_EXISTS", "category slug already exists")
			return
		}
		log.Printf("ERROR: update category: %v", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

// Delete removes the category unless products still reference it.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, ok := h.resolveCategory(w, r)
	if !ok {
		return
	}

	count, err := h.store.CountProductsByCategory(r.Context(), category.ID)
	if err != nil {
		log.Printf("ERROR: count products for category: %v", err)
		writeInternalError(w)
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "CATEGORY_IN_USE", "category has products and cannot be deleted")
		return
	}

	if _, err := h.store.DeleteCategory(r.Context(), category.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found")
			return
		}
		log.Printf("ERROR: delete category: %v", err)
		writeInternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// resolveCategory loads the category named by the id or slug query
// parameter, writing the error response itself when it cannot.
func (h *CategoryHandler) resolveCategory(w http.ResponseWriter, r *http.Request) (database.Category, bool) {
	idStr := r.URL.Query().Get("id")
	slug := r.URL.Query().Get("slug")

	if idStr == "" && slug == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "id or slug query parameter is required")
		return database.Category{}, false
	}

	var (
		category database.Category
		err      error
	)
	if idStr != "" {
		id, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid category ID")
			return database.Category{}, false
		}
		category, err = h.store.GetCategoryByID(r.Context(), id)
	} else {
		category, err = h.store.GetCategoryBySlug(r.Context(), slug)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found")
			return database.Category{}, false
		}
		log.Printf("ERROR: get category: %v", err)
		writeInternalError(w)
		return database.Category{}, false
	}
	return category, true
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// GenerateSlug derives a URL-safe identifier from a display name:
// lower-cased, non-alphanumeric characters stripped, runs of spaces and
// hyphens collapsed into single hyphens.
func GenerateSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
