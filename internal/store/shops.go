package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/google/uuid"
)

func CreateShop(ctx context.Context, db *sql.DB, lineUserID, displayName, shopName string) (*models.Shop, error) {
	shop := &models.Shop{}

	query := `
		INSERT INTO shops (id, line_user_id, display_name, shop_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, line_user_id, display_name, shop_name, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, uuid.NewString(), lineUserID, displayName, shopName).Scan(
		&shop.ID,
		&shop.LineUserID,
		&shop.DisplayName,
		&shop.ShopName,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}

	return shop, nil
}

func GetShop(ctx context.Context, db *sql.DB, id string) (*models.Shop, error) {
	shop := &models.Shop{}

	query := `
		SELECT id, line_user_id, display_name, shop_name, created_at, updated_at
		FROM shops
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&shop.ID,
		&shop.LineUserID,
		&shop.DisplayName,
		&shop.ShopName,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrShopNotFound
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}

	return shop, nil
}

// GetShopByLineUserID resolves the shop behind an incoming chat event.
func GetShopByLineUserID(ctx context.Context, db *sql.DB, lineUserID string) (*models.Shop, error) {
	shop := &models.Shop{}

	query := `
		SELECT id, line_user_id, display_name, shop_name, created_at, updated_at
		FROM shops
		WHERE line_user_id = $1`

	err := db.QueryRowContext(ctx, query, lineUserID).Scan(
		&shop.ID,
		&shop.LineUserID,
		&shop.DisplayName,
		&shop.ShopName,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrShopNotFound
		}
		return nil, fmt.Errorf("get shop by line user id: %w", err)
	}

	return shop, nil
}

func ListShops(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shops`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count shops: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, line_user_id, display_name, shop_name, created_at, updated_at
		FROM shops
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []models.Shop
	for rows.Next() {
		var shop models.Shop
		err := rows.Scan(
			&shop.ID,
			&shop.LineUserID,
			&shop.DisplayName,
			&shop.ShopName,
			&shop.CreatedAt,
			&shop.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, shop)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &OffsetPage{
		Items:      shops,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
