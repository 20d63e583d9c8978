package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chanida/go-bakery-shop/internal/events"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/chanida/go-bakery-shop/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID      string  `json:"owner_id"`
		CustomerID   string  `json:"customer_id"`
		CustomerName string  `json:"customer_name"`
		Notes        string  `json:"notes"`
		DeliveryFee  float64 `json:"delivery_fee"`
		DeductStock  bool    `json:"deduct_stock"`
		Items        []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OwnerID == "" {
		respondError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	items := make([]store.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, store.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := store.CreateOrder(r.Context(), s.db, store.CreateOrderRequest{
		OwnerID:      req.OwnerID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
		DeliveryFee:  decimal.NewFromFloat(req.DeliveryFee),
		DeductStock:  req.DeductStock,
		Items:        items,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if req.DeductStock {
		s.bot.InvalidateStock(r.Context(), order.OwnerID)
	}

	s.publisher.Publish(events.EventOrderCreated, order.ID, events.OrderCreatedPayload{
		OrderID:     order.ID,
		OwnerID:     order.OwnerID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(items),
	})

	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := store.GetOrder(r.Context(), s.db, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := store.ListOrdersCursor(r.Context(), s.db, ownerID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	status := models.OrderStatus(req.Status)

	if err := store.UpdateOrderStatus(r.Context(), s.db, id, status); err != nil {
		respondStoreError(w, err)
		return
	}

	if order, err := store.GetOrder(r.Context(), s.db, id); err == nil {
		s.publisher.Publish(events.EventOrderStatusChanged, id, events.OrderStatusChangedPayload{
			OrderID: id,
			OwnerID: order.OwnerID,
			Status:  status,
		})
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "order updated"})
}
