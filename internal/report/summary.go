package report

import (
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Count        int             `json:"count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Summarize reduces a set of orders to its headline figures. Each order's
// total already includes its delivery fee, so the revenue sum does not add
// fees a second time.
func Summarize(orders []models.Order) Summary {
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(order.TotalAmount)
	}
	return Summary{
		Count:        len(orders),
		TotalRevenue: total,
	}
}
