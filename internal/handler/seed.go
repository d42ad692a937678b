package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trendifymart/api/internal/database"
)

// SeedHandler exposes seeding to the admin dashboard so a fresh deploy
// can be populated without shell access.
type SeedHandler struct {
	db     database.TxBeginner
	params database.SeedParams
}

func NewSeedHandler(db database.TxBeginner, params database.SeedParams) *SeedHandler {
	return &SeedHandler{db: db, params: params}
}

// RegisterRoutes registers the seed endpoint. Expected to be mounted at
// /api/admin/seed.
func (h *SeedHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Seed)
}

type seedResponse struct {
	Success bool `json:"success"`
}

// Seed handles POST /api/admin/seed.
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := database.Seed(r.Context(), h.db, h.params); err != nil {
		log.Printf("ERROR: seed: %v", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, seedResponse{Success: true})
}
