package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/chanida/go-bakery-shop/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	croissant := createTestProduct(t, db, shop.LineUserID, 45, 50)
	cake := createTestProduct(t, db, shop.LineUserID, 320, 30)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		OwnerID:      shop.LineUserID,
		CustomerID:   "C1",
		CustomerName: "Ploy",
		DeliveryFee:  decimal.NewFromInt(40),
		Items: []store.OrderItemRequest{
			{ProductID: croissant.ID, Quantity: 4},
			{ProductID: cake.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	// 4*45 + 1*320 + 40 delivery
	expectedTotal := decimal.NewFromInt(540)
	if !order.TotalAmount.Equal(expectedTotal) {
		t.Errorf("Expected total %s, got %s", expectedTotal, order.TotalAmount)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("New orders must start pending, got %s", order.Status)
	}

	// Without DeductStock, order creation leaves stock alone.
	after, err := store.GetProduct(ctx, db, croissant.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 50 {
		t.Errorf("Expected stock untouched at 50, got %d", after.StockQuantity)
	}

	// Raising the live price must not rewrite the historical order.
	newPrice := decimal.NewFromInt(60)
	if _, err := store.UpdateProduct(ctx, db, croissant.ID, store.UpdateProductRequest{Price: &newPrice}); err != nil {
		t.Fatalf("Update product: %v", err)
	}

	fetched, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(fetched.Items))
	}
	for _, item := range fetched.Items {
		if item.ProductID == croissant.ID {
			if !item.UnitPrice.Equal(decimal.NewFromInt(45)) {
				t.Errorf("Expected snapshotted unit price 45, got %s", item.UnitPrice)
			}
			if item.ProductName != croissant.Name {
				t.Errorf("Expected snapshotted name %q, got %q", croissant.Name, item.ProductName)
			}
			if !item.Subtotal.Equal(decimal.NewFromInt(180)) {
				t.Errorf("Expected subtotal 180, got %s", item.Subtotal)
			}
		}
	}
}

func TestCreateOrderDeductStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 5)

	_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		OwnerID:     shop.LineUserID,
		DeductStock: true,
		Items:       []store.OrderItemRequest{{ProductID: product.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 2 {
		t.Errorf("Expected stock 2, got %d", after.StockQuantity)
	}

	_, err = store.CreateOrder(ctx, db, store.CreateOrderRequest{
		OwnerID:     shop.LineUserID,
		DeductStock: true,
		Items:       []store.OrderItemRequest{{ProductID: product.ID, Quantity: 3}},
	})
	if !errors.Is(err, database.ErrInsufficientStock) {
		t.Errorf("Expected insufficient stock error, got: %v", err)
	}

	after, err = store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 2 {
		t.Errorf("Stock should remain at 2 after failed order, got %d", after.StockQuantity)
	}
}

func TestConcurrentOrderCreation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 20)

	concurrency := 10
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
				OwnerID:     shop.LineUserID,
				DeductStock: true,
				Items:       []store.OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
			})
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, database.ErrInsufficientStock):
			t.Errorf("No order should run out of stock here: %v", err)
		case errors.Is(err, database.ErrContentionExceeded):
			// Acceptable under heavy contention; the invariant below still holds.
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount == 0 {
		t.Error("At least one concurrent order should succeed")
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if expected := 20 - successCount*2; after.StockQuantity != expected {
		t.Errorf("Expected final stock %d, got %d", expected, after.StockQuantity)
	}
}

func TestOrdersInWindow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 100)

	var orderIDs []string
	for i := 0; i < 3; i++ {
		order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
			OwnerID: shop.LineUserID,
			Items:   []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("Create order %d: %v", i, err)
		}
		orderIDs = append(orderIDs, order.ID)
	}

	// Backdate one order out of the window and spread the rest.
	now := time.Now()
	backdate := func(id string, at time.Time) {
		if _, err := db.ExecContext(ctx, `UPDATE orders SET created_at = $1 WHERE id = $2`, at, id); err != nil {
			t.Fatalf("Backdate order: %v", err)
		}
	}
	backdate(orderIDs[0], now.Add(-48*time.Hour))
	backdate(orderIDs[1], now.Add(-2*time.Hour))
	backdate(orderIDs[2], now.Add(-1*time.Hour))

	start := now.Add(-24 * time.Hour)
	orders, err := store.OrdersInWindow(ctx, db, shop.LineUserID, start, now)
	if err != nil {
		t.Fatalf("Orders in window: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders in window, got %d", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
			t.Error("Orders must be sorted by created_at descending")
		}
	}
	if orders[0].ID != orderIDs[2] {
		t.Errorf("Most recent order should come first")
	}

	// An empty window is a valid, empty result.
	empty, err := store.OrdersInWindow(ctx, db, shop.LineUserID, now.Add(time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Orders in empty window: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no orders, got %d", len(empty))
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 10)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		OwnerID: shop.LineUserID,
		Items:   []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if err := store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusConfirmed); err != nil {
		t.Fatalf("pending -> confirmed should succeed: %v", err)
	}

	err = store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusPending)
	if !errors.Is(err, database.ErrInvalidTransition) {
		t.Errorf("confirmed -> pending should be rejected, got: %v", err)
	}

	if err := store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusCompleted); err != nil {
		t.Fatalf("confirmed -> completed should succeed: %v", err)
	}

	err = store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusCancelled)
	if !errors.Is(err, database.ErrInvalidTransition) {
		t.Errorf("completed -> cancelled should be rejected, got: %v", err)
	}

	err = store.UpdateOrderStatus(ctx, db, uuid.NewString(), models.OrderStatusConfirmed)
	if !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected order not found error, got: %v", err)
	}
}

func TestListOrdersCursor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 100)

	for i := 0; i < 15; i++ {
		_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
			OwnerID: shop.LineUserID,
			Items:   []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("Create order %d: %v", i, err)
		}
	}

	page1, err := store.ListOrdersCursor(ctx, db, shop.LineUserID, "", 10)
	if err != nil {
		t.Fatalf("List orders page 1: %v", err)
	}
	if !page1.HasMore {
		t.Error("Page 1 should have more results")
	}
	if page1.NextCursor == "" {
		t.Error("Page 1 should have a next cursor")
	}

	page2, err := store.ListOrdersCursor(ctx, db, shop.LineUserID, page1.NextCursor, 10)
	if err != nil {
		t.Fatalf("List orders page 2: %v", err)
	}
	if page2.HasMore {
		t.Error("Page 2 should not have more results")
	}
}
