package api

import (
	"encoding/json"
	"net/http"

	"github.com/chanida/go-bakery-shop/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID     string  `json:"owner_id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		ImageURL    string  `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OwnerID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "owner_id and name are required")
		return
	}

	product, err := store.CreateProduct(r.Context(), s.db, store.CreateProductRequest{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := store.GetProduct(r.Context(), s.db, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	onlyAvailable := r.URL.Query().Get("available") == "true"

	products, err := store.ListProductsByOwner(r.Context(), s.db, ownerID, onlyAvailable)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		ImageURL    *string  `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := store.UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		update.Price = &price
	}

	product, err := store.UpdateProduct(r.Context(), s.db, chi.URLParam(r, "id"), update)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// adjustStock is the HTTP face of the stock ledger. The delta is signed:
// positive restocks, negative consumes.
func (s *Server) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	id := chi.URLParam(r, "id")
	if err := store.AdjustStock(r.Context(), s.db, id, req.Delta); err != nil {
		respondStoreError(w, err)
		return
	}

	if product, err := store.GetProduct(r.Context(), s.db, id); err == nil {
		s.bot.InvalidateStock(r.Context(), product.OwnerID)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "stock adjusted"})
}

func (s *Server) setAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := store.SetAvailability(r.Context(), s.db, id, req.Available); err != nil {
		respondStoreError(w, err)
		return
	}

	if product, err := store.GetProduct(r.Context(), s.db, id); err == nil {
		s.bot.InvalidateStock(r.Context(), product.OwnerID)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "availability updated"})
}
