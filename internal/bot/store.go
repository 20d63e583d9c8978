package bot

import (
	"context"
	"database/sql"
	"time"

	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/chanida/go-bakery-shop/internal/store"
)

// SQLStore adapts the package-level store functions to the Store interface.
type SQLStore struct {
	DB *sql.DB
}

func (s SQLStore) ShopByLineUserID(ctx context.Context, lineUserID string) (*models.Shop, error) {
	return store.GetShopByLineUserID(ctx, s.DB, lineUserID)
}

func (s SQLStore) ProductsByOwner(ctx context.Context, ownerID string, onlyAvailable bool) ([]models.Product, error) {
	return store.ListProductsByOwner(ctx, s.DB, ownerID, onlyAvailable)
}

func (s SQLStore) OrdersInWindow(ctx context.Context, ownerID string, start, end time.Time) ([]models.Order, error) {
	return store.OrdersInWindow(ctx, s.DB, ownerID, start, end)
}
