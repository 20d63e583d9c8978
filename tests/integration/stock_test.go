package integration

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/chanida/go-bakery-shop/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func createTestShop(t *testing.T, db *sql.DB) *models.Shop {
	t.Helper()

	shop, err := store.CreateShop(context.Background(), db, "U"+uuid.NewString(), "Test Baker", "Test Bakery")
	if err != nil {
		t.Fatalf("Create shop: %v", err)
	}
	return shop
}

func createTestProduct(t *testing.T, db *sql.DB, ownerID string, price int64, stock int) *models.Product {
	t.Helper()

	product, err := store.CreateProduct(context.Background(), db, store.CreateProductRequest{
		OwnerID: ownerID,
		Name:    "Croissant " + uuid.NewString()[:8],
		Price:   decimal.NewFromInt(price),
		Stock:   stock,
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return product
}

func TestAdjustStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 10)

	if err := store.AdjustStock(ctx, db, product.ID, -3); err != nil {
		t.Fatalf("Adjust stock: %v", err)
	}
	if err := store.AdjustStock(ctx, db, product.ID, 5); err != nil {
		t.Fatalf("Adjust stock (restock): %v", err)
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 12 {
		t.Errorf("Expected stock 12, got %d", after.StockQuantity)
	}
	if !after.UpdatedAt.After(product.UpdatedAt) {
		t.Error("UpdatedAt should advance on stock adjustment")
	}
}

func TestAdjustStockInsufficient(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 5)

	err := store.AdjustStock(ctx, db, product.ID, -6)
	if !errors.Is(err, database.ErrInsufficientStock) {
		t.Errorf("Expected insufficient stock error, got: %v", err)
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 5 {
		t.Errorf("Stock should remain unchanged at 5, got %d", after.StockQuantity)
	}
}

func TestAdjustStockMissingProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := store.AdjustStock(context.Background(), db, uuid.NewString(), -1)
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found error, got: %v", err)
	}
}

// Two concurrent decrements racing for the last unit: exactly one must win.
func TestAdjustStockLastUnitRace(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.AdjustStock(ctx, db, product.ID, -1)
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	insufficientCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, database.ErrInsufficientStock):
			insufficientCount++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount != 1 || insufficientCount != 1 {
		t.Errorf("Expected exactly one success and one insufficient-stock failure, got %d/%d",
			successCount, insufficientCount)
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.StockQuantity != 0 {
		t.Errorf("Expected final stock 0, got %d", after.StockQuantity)
	}
}

func TestConcurrentStockAdjustments(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	shop := createTestShop(t, db)
	product := createTestProduct(t, db, shop.LineUserID, 100, 10)

	concurrency := 8
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.AdjustStock(ctx, db, product.ID, -2)
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
		case errors.Is(err, database.ErrContentionExceeded):
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}

	expectedStock := 10 - successCount*2
	if after.StockQuantity != expectedStock {
		t.Errorf("Expected final stock %d, got %d", expectedStock, after.StockQuantity)
	}
	if after.StockQuantity < 0 {
		t.Error("Stock must never go negative")
	}
}
