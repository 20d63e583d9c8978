package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chanida/go-bakery-shop/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) createShop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LineUserID  string `json:"line_user_id"`
		DisplayName string `json:"display_name"`
		ShopName    string `json:"shop_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.LineUserID == "" || req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "line_user_id and display_name are required")
		return
	}

	shop, err := store.CreateShop(r.Context(), s.db, req.LineUserID, req.DisplayName, req.ShopName)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, shop)
}

func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	shop, err := store.GetShop(r.Context(), s.db, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

func (s *Server) getShopByLineUser(w http.ResponseWriter, r *http.Request) {
	shop, err := store.GetShopByLineUserID(r.Context(), s.db, chi.URLParam(r, "lineUserID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

func (s *Server) listShops(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := store.ListShops(r.Context(), s.db, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func pageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
