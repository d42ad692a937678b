package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/trendifymart/api/internal/database"
	"github.com/trendifymart/api/internal/handler"
)

// --- Mock store ---

type mockCategoryStore struct {
	categories    map[uuid.UUID]database.Category // keyed by category ID
	productCounts map[uuid.UUID]int64             // products per category
}

func newMockCategoryStore() *mockCategoryStore {
	return &mockCategoryStore{
		categories:    make(map[uuid.UUID]database.Category),
		productCounts: make(map[uuid.UUID]int64),
	}
}

func (m *mockCategoryStore) addCategory(name, slug string) database.Category {
	c := database.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	m.categories[c.ID] = c
	return c
}

func (m *mockCategoryStore) ListCategories(_ context.Context) ([]database.Category, error) {
	result := []database.Category{}
	for _, c := range m.categories {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCategoryStore) GetCategoryByID(_ context.Context, id uuid.UUID) (database.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return database.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCategoryStore) GetCategoryBySlug(_ context.Context, slug string) (database.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return database.Category{}, pgx.ErrNoRows
}

func (m *mockCategoryStore) CreateCategory(_ context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	for _, c := range m.categories {
		if c.Slug == arg.Slug {
			return database.Category{}, &pgconn.PgError{Code: "23505", ConstraintName: "categories_slug_key"}
		}
	}
	c := database.Category{
		ID:          uuid.New(),
		Name:        arg.Name,
		Slug:        arg.Slug,
		Description: arg.Description,
		CreatedAt:   time.Now(),
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockCategoryStore) UpdateCategory(_ context.Context, arg database.UpdateCategoryParams) (database.Category, error) {
	c, ok := m.categories[arg.ID]
	if !ok {
		return database.Category{}, pgx.ErrNoRows
	}
	for _, other := range m.categories {
		if other.ID != arg.ID && other.Slug == arg.Slug {
			return database.Category{}, &pgconn.PgError{Code: "23505", ConstraintName: "categories_slug_key"}
		}
	}
	c.Name = arg.Name
	c.Slug = arg.Slug
	c.Description = arg.Description
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockCategoryStore) DeleteCategory(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.categories[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.categories, id)
	return id, nil
}

func (m *mockCategoryStore) CountProductsByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	return m.productCounts[categoryID], nil
}

// --- Helpers ---

func setupCategoryRouter(store *mockCategoryStore) *chi.Mux {
	h := handler.NewCategoryHandler(store)
	r := chi.NewRouter()
	r.Route("/api/categories", h.RegisterRoutes)
	return r
}

func decodeCategoryList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Slug tests ---

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Men's Polo Shirts!", "mens-polo-shirts"},
		{"Women's Clothing", "womens-clothing"},
		{"Footwear", "footwear"},
		{"  Spaced   Out  ", "spaced-out"},
		{"Already-Hyphenated Name", "already-hyphenated-name"},
		{"CAPS AND 123", "caps-and-123"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		if got := handler.GenerateSlug(tc.in); got != tc.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- List / Get tests ---

func TestCategoryList(t *testing.T) {
	store := newMockCategoryStore()
	store.addCategory("Footwear", "footwear")
	store.addCategory("Accessories", "accessories")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "GET", "/api/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeCategoryList(t, rr); len(resp) != 2 {
		t.Errorf("expected 2 categories, got %d", len(resp))
	}
}

func TestCategoryList_Empty(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "GET", "/api/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if resp := decodeCategoryList(t, rr); len(resp) != 0 {
		t.Errorf("expected empty list, got %d items", len(resp))
	}
}

func TestCategoryGet_ByID(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "GET", "/api/categories?id="+cat.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["slug"] != "footwear" {
		t.Errorf("slug: got %v, want footwear", resp["slug"])
	}
}

func TestCategoryGet_BySlug(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "GET", "/api/categories?slug=footwear", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["id"] != cat.ID.String() {
		t.Errorf("id: got %v, want %s", resp["id"], cat.ID)
	}
}

func TestCategoryGet_NotFound(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "GET", "/api/categories?id="+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if resp := decodeResponse(t, rr); resp["code"] != "CATEGORY_NOT_FOUND" {
		t.Errorf("code: got %v, want CATEGORY_NOT_FOUND", resp["code"])
	}
}

func TestCategoryGet_InvalidID(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "GET", "/api/categories?id=not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Create tests ---

func TestCategoryCreate_SlugDerived(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/api/categories", map[string]interface{}{
		"name": "Men's Polo Shirts!",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["slug"] != "mens-polo-shirts" {
		t.Errorf("slug: got %v, want mens-polo-shirts", resp["slug"])
	}
}

func TestCategoryCreate_ExplicitSlug(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "POST", "/api/categories", map[string]interface{}{
		"name": "Footwear",
		"slug": "shoes",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["slug"] != "shoes" {
		t.Errorf("slug: got %v, want shoes", resp["slug"])
	}
}

func TestCategoryCreate_MissingName(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/api/categories", map[string]interface{}{
		"description": "no name",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rr); resp["code"] != "MISSING_NAME" {
		t.Errorf("code: got %v, want MISSING_NAME", resp["code"])
	}
	if len(store.categories) != 0 {
		t.Error("store must not be touched on validation failure")
	}
}

func TestCategoryCreate_NameWithoutAlphanumerics(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "POST", "/api/categories", map[string]interface{}{
		"name": "!!!",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCategoryCreate_DuplicateSlug(t *testing.T) {
	store := newMockCategoryStore()
	store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/api/categories", map[string]interface{}{
		"name": "Footwear",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if resp := decodeResponse(t, rr); resp["code"] != "SLUG_EXISTS" {
		t.Errorf("code: got %v, want SLUG_EXISTS", resp["code"])
	}
}

// --- Update tests ---

func TestCategoryUpdate_ByID(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Old Name", "old-name")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/api/categories?id="+cat.ID.String(), map[string]interface{}{
		"name": "New Name",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["name"] != "New Name" {
		t.Errorf("name: got %v, want 'New Name'", resp["name"])
	}
	// Slug is kept unless a new one is supplied
	if resp["slug"] != "old-name" {
		t.Errorf("slug: got %v, want old-name", resp["slug"])
	}
}

func TestCategoryUpdate_BySlugWithNewSlug(t *testing.T) {
	store := newMockCategoryStore()
	store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/api/categories?slug=footwear", map[string]interface{}{
		"name": "Shoes",
		"slug": "shoes",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["slug"] != "shoes" {
		t.Errorf("slug: got %v, want shoes", resp["slug"])
	}
}

func TestCategoryUpdate_MissingAddressing(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "PUT", "/api/categories", map[string]interface{}{
		"name": "Whatever",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if resp := decodeResponse(t, rr); resp["code"] != "MISSING_ID" {
		t.Errorf("code: got %v, want MISSING_ID", resp["code"])
	}
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "PUT", "/api/categories?id="+uuid.New().String(), map[string]interface{}{
		"name": "Whatever",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCategoryUpdate_MissingName(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/api/categories?id="+cat.ID.String(), map[string]interface{}{
		"description": "no name",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCategoryUpdate_SlugConflict(t *testing.T) {
	store := newMockCategoryStore()
	store.addCategory("Footwear", "footwear")
	cat := store.addCategory("Accessories", "accessories")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/api/categories?id="+cat.ID.String(), map[string]interface{}{
		"name": "Accessories",
		"slug": "footwear",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCategoryUpdate_ClearDescription(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Footwear", "footwear")
	cat.Description = pgtype.Text{String: "Old desc", Valid: true}
	store.categories[cat.ID] = cat
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/api/categories?id="+cat.ID.String(), map[string]interface{}{
		"name": "Footwear",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["description"] != nil {
		t.Errorf("description: expected null, got %v", resp["description"])
	}
}

// --- Delete tests ---

func TestCategoryDelete_Valid(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "DELETE", "/api/categories?id="+cat.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if _, exists := store.categories[cat.ID]; exists {
		t.Error("category should be removed from store")
	}
}

func TestCategoryDelete_InUse(t *testing.T) {
	store := newMockCategoryStore()
	cat := store.addCategory("Footwear", "footwear")
	store.productCounts[cat.ID] = 3
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "DELETE", "/api/categories?id="+cat.ID.String(), nil)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["code"] != "CATEGORY_IN_USE" {
		t.Errorf("code: got %v, want CATEGORY_IN_USE", resp["code"])
	}
	if _, exists := store.categories[cat.ID]; !exists {
		t.Error("category must survive a blocked delete")
	}
}

func TestCategoryDelete_BySlug(t *testing.T) {
	store := newMockCategoryStore()
	store.addCategory("Footwear", "footwear")
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "DELETE", "/api/categories?slug=footwear", nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
}

func TestCategoryDelete_NotFound(t *testing.T) {
	router := setupCategoryRouter(newMockCategoryStore())

	rr := doRequest(t, router, "DELETE", "/api/categories?id="+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
