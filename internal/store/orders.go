package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	OwnerID      string
	CustomerID   string
	CustomerName string
	Notes        string
	DeliveryFee  decimal.Decimal
	// DeductStock makes order creation consume stock in the same
	// transaction. The stock ledger itself stays order-agnostic; linking
	// the two is this caller's choice.
	DeductStock bool
	Items       []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID string
	Quantity  int
}

func CreateOrder(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	if req.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var ownerExists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM shops WHERE line_user_id = $1)",
			req.OwnerID).Scan(&ownerExists)
		if err != nil {
			return fmt.Errorf("check owner exists: %w", err)
		}
		if !ownerExists {
			return database.ErrShopNotFound
		}

		type snapshot struct {
			name  string
			price decimal.Decimal
		}

		totalAmount := req.DeliveryFee
		snapshots := make(map[string]snapshot)

		for _, item := range req.Items {
			if item.Quantity <= 0 {
				return fmt.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID)
			}

			var name string
			var price decimal.Decimal
			var stockQuantity int

			err := tx.QueryRowContext(ctx,
				`SELECT name, price, stock_quantity
				 FROM products
				 WHERE id = $1 AND owner_id = $2
				 FOR UPDATE`,
				item.ProductID, req.OwnerID).Scan(&name, &price, &stockQuantity)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("lock product %s: %w", item.ProductID, err)
			}

			if req.DeductStock && stockQuantity < item.Quantity {
				return database.ErrInsufficientStock
			}

			snapshots[item.ProductID] = snapshot{name: name, price: price}
			totalAmount = totalAmount.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		orderID := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO orders (id, owner_id, customer_id, customer_name, status, total_amount, delivery_fee, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
			orderID, req.OwnerID, req.CustomerID, req.CustomerName,
			models.OrderStatusPending, totalAmount, req.DeliveryFee, req.Notes)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			snap := snapshots[item.ProductID]
			subtotal := snap.price.Mul(decimal.NewFromInt(int64(item.Quantity)))

			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
				uuid.NewString(), orderID, item.ProductID, snap.name, item.Quantity, snap.price, subtotal)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		if req.DeductStock {
			for _, item := range req.Items {
				result, err := tx.ExecContext(ctx,
					`UPDATE products
					 SET stock_quantity = stock_quantity - $1,
					     updated_at = NOW()
					 WHERE id = $2
					   AND stock_quantity >= $1`,
					item.Quantity, item.ProductID)
				if err != nil {
					return fmt.Errorf("deduct stock: %w", err)
				}

				rowsAffected, err := result.RowsAffected()
				if err != nil {
					return fmt.Errorf("get rows affected: %w", err)
				}

				if rowsAffected == 0 {
					return database.ErrInsufficientStock
				}
			}
		}

		order = &models.Order{ID: orderID}
		err = tx.QueryRowContext(ctx,
			`SELECT owner_id, customer_id, customer_name, status, total_amount, delivery_fee, notes, created_at, updated_at
			 FROM orders WHERE id = $1`,
			orderID).Scan(
			&order.OwnerID,
			&order.CustomerID,
			&order.CustomerName,
			&order.Status,
			&order.TotalAmount,
			&order.DeliveryFee,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id string) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, owner_id, customer_id, customer_name, status, total_amount, delivery_fee, notes, created_at, updated_at
		FROM orders
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.OwnerID,
		&order.CustomerID,
		&order.CustomerName,
		&order.Status,
		&order.TotalAmount,
		&order.DeliveryFee,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1`

	rows, err := db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

// OrdersInWindow returns the owner's orders with created_at in the closed
// interval [start, end], most recent first. An empty window yields an empty
// slice, not an error.
func OrdersInWindow(ctx context.Context, db *sql.DB, ownerID string, start, end time.Time) ([]models.Order, error) {
	query := `
		SELECT id, owner_id, customer_id, customer_name, status, total_amount, delivery_fee, notes, created_at, updated_at
		FROM orders
		WHERE owner_id = $1
		  AND created_at >= $2
		  AND created_at <= $3
		ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("orders in window: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.OwnerID,
			&order.CustomerID,
			&order.CustomerName,
			&order.Status,
			&order.TotalAmount,
			&order.DeliveryFee,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func ListOrdersCursor(ctx context.Context, db *sql.DB, ownerID, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	var rows *sql.Rows
	if cursorData.IsZero() {
		rows, err = db.QueryContext(ctx, `
			SELECT id, owner_id, customer_id, customer_name, status, total_amount, delivery_fee, notes, created_at, updated_at
			FROM orders
			WHERE owner_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`,
			ownerID, limit+1)
	} else {
		rows, err = db.QueryContext(ctx, `
			SELECT id, owner_id, customer_id, customer_name, status, total_amount, delivery_fee, notes, created_at, updated_at
			FROM orders
			WHERE owner_id = $1
			  AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4`,
			ownerID, cursorData.CreatedAt, cursorData.ID, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.OwnerID,
			&order.CustomerID,
			&order.CustomerName,
			&order.Status,
			&order.TotalAmount,
			&order.DeliveryFee,
			&order.Notes,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// UpdateOrderStatus moves an order along the forward-only status graph.
// Illegal moves (completed back to pending, re-cancelling, unknown states)
// fail with ErrInvalidTransition and write nothing.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", database.ErrInvalidTransition, status)
	}

	return database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var current models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if !models.CanTransition(current, status) {
			return fmt.Errorf("%w: %s -> %s", database.ErrInvalidTransition, current, status)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
			status, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return nil
	})
}
