package bot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/chanida/go-bakery-shop/internal/report"
)

func formatMenu(products []models.Product) string {
	if len(products) == 0 {
		return "Your menu is empty. Add a product to get started."
	}

	var b strings.Builder
	b.WriteString("Your menu:\n")
	for _, p := range products {
		marker := ""
		if !p.IsAvailable {
			marker = " (hidden)"
		}
		fmt.Fprintf(&b, "\n%s - %s THB%s", p.Name, p.Price.StringFixed(2), marker)
	}
	return b.String()
}

// formatStock lists available products lowest stock first so the items that
// need restocking lead the reply.
func formatStock(products []models.Product) string {
	if len(products) == 0 {
		return "No available products to report stock for."
	}

	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StockQuantity < sorted[j].StockQuantity
	})

	var b strings.Builder
	b.WriteString("Remaining stock:\n")
	for _, p := range sorted {
		fmt.Fprintf(&b, "\n%s %s: %d pcs", stockMarker(p.StockQuantity), p.Name, p.StockQuantity)
	}
	return b.String()
}

func stockMarker(quantity int) string {
	switch {
	case quantity == 0:
		return "❌"
	case quantity < lowStockThreshold:
		return "⚠️"
	default:
		return "✅"
	}
}

func formatSummary(period string, s report.Summary) string {
	var label string
	switch period {
	case "week":
		label = "This week"
	case "month":
		label = "This month"
	default:
		label = "Today"
	}

	return fmt.Sprintf("%s's sales\n\nOrders: %d\nRevenue: %s THB",
		label, s.Count, s.TotalRevenue.StringFixed(2))
}

func formatOrders(orders []models.Order, loc *time.Location) string {
	if len(orders) == 0 {
		return "No orders today yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's orders (%d):\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "\n%s - %s - %s THB [%s]",
			o.CreatedAt.In(loc).Format("15:04"), o.CustomerName, o.TotalAmount.StringFixed(2), o.Status)
	}
	return b.String()
}
