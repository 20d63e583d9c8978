package api

import (
	"net/http"
	"time"

	"github.com/chanida/go-bakery-shop/internal/report"
	"github.com/chanida/go-bakery-shop/internal/store"
	"github.com/go-chi/chi/v5"
)

// getSummary serves the LIFF dashboard's sales figures for today, this week,
// or this month, in the shop's configured time zone.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "lineUserID")
	period := chi.URLParam(r, "period")

	var window report.Window
	now := time.Now()
	switch period {
	case "today":
		window = report.TodayWindow(now, s.loc)
	case "week":
		window = report.WeekWindow(now, s.loc)
	case "month":
		window = report.MonthWindow(now, s.loc)
	default:
		respondError(w, http.StatusBadRequest, "period must be today, week, or month")
		return
	}

	orders, err := store.OrdersInWindow(r.Context(), s.db, ownerID, window.Start, window.End)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	summary := report.Summarize(orders)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period":  period,
		"start":   window.Start,
		"end":     window.End,
		"summary": summary,
		"orders":  orders,
	})
}
