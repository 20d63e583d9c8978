package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	OwnerID     string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
}

func CreateProduct(ctx context.Context, db *sql.DB, req CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative")
	}

	product := &models.Product{}

	query := `
		INSERT INTO products (id, owner_id, name, description, price, stock_quantity, image_url, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
		RETURNING id, owner_id, name, description, price, stock_quantity, image_url, is_available, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		uuid.NewString(), req.OwnerID, req.Name, req.Description, req.Price, req.Stock, req.ImageURL).Scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.ImageURL,
		&product.IsAvailable,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, owner_id, name, description, price, stock_quantity, image_url, is_available, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.ImageURL,
		&product.IsAvailable,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ListProductsByOwner returns the owner's menu ordered by name. With
// onlyAvailable set, hidden products are excluded.
func ListProductsByOwner(ctx context.Context, db *sql.DB, ownerID string, onlyAvailable bool) ([]models.Product, error) {
	query := `
		SELECT id, owner_id, name, description, price, stock_quantity, image_url, is_available, created_at, updated_at
		FROM products
		WHERE owner_id = $1`
	if onlyAvailable {
		query += ` AND is_available`
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.OwnerID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.StockQuantity,
			&product.ImageURL,
			&product.IsAvailable,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func UpdateProduct(ctx context.Context, db *sql.DB, id string, req UpdateProductRequest) (*models.Product, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	product := &models.Product{}

	query := `
		UPDATE products
		SET name        = COALESCE($1, name),
		    description = COALESCE($2, description),
		    price       = COALESCE($3, price),
		    image_url   = COALESCE($4, image_url),
		    updated_at  = NOW()
		WHERE id = $5
		RETURNING id, owner_id, name, description, price, stock_quantity, image_url, is_available, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, req.Name, req.Description, req.Price, req.ImageURL, id).Scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.ImageURL,
		&product.IsAvailable,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func SetAvailability(ctx context.Context, db *sql.DB, id string, available bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE products
		 SET is_available = $1, updated_at = NOW()
		 WHERE id = $2`,
		available, id)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

// AdjustStock applies a signed delta to a product's stock count. The
// read-modify-write runs in a single serializable transaction so that
// concurrent adjustments never drive the count negative: the check and the
// write see the same committed value, and conflicting transactions are
// retried by WithRetry up to its budget.
//
// Failure modes: ErrProductNotFound when the product does not exist,
// ErrInsufficientStock when the delta would take the count below zero, and
// ErrContentionExceeded when the retry budget is exhausted. None of them
// leave a partial write behind.
func AdjustStock(ctx context.Context, db *sql.DB, productID string, delta int) error {
	return database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx,
			`SELECT stock_quantity
			 FROM products
			 WHERE id = $1
			 FOR UPDATE`,
			productID).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}

		newQuantity := current + delta
		if newQuantity < 0 {
			return database.ErrInsufficientStock
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products
			 SET stock_quantity = $1, updated_at = NOW()
			 WHERE id = $2`,
			newQuantity, productID)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		return nil
	})
}
