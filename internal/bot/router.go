// Package bot maps chat text commands to store operations and renders the
// text replies. It knows nothing about the chat transport; the webhook
// handler feeds it the sender identity and message text and ships whatever
// reply comes back.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chanida/go-bakery-shop/internal/database"
	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/chanida/go-bakery-shop/internal/redisx"
	"github.com/chanida/go-bakery-shop/internal/report"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is the slice of the data layer the bot needs.
type Store interface {
	ShopByLineUserID(ctx context.Context, lineUserID string) (*models.Shop, error)
	ProductsByOwner(ctx context.Context, ownerID string, onlyAvailable bool) ([]models.Product, error)
	OrdersInWindow(ctx context.Context, ownerID string, start, end time.Time) ([]models.Order, error)
}

type Router struct {
	store    Store
	rdb      *redis.Client
	loc      *time.Location
	replyTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewRouter(store Store, rdb *redis.Client, loc *time.Location, replyTTL time.Duration, logger zerolog.Logger) *Router {
	return &Router{
		store:    store,
		rdb:      rdb,
		loc:      loc,
		replyTTL: replyTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleText resolves the sender's shop and dispatches the command. The
// returned string is the reply to send back; it is never empty on a nil
// error.
func (r *Router) HandleText(ctx context.Context, lineUserID, text string) (string, error) {
	shop, err := r.store.ShopByLineUserID(ctx, lineUserID)
	if err != nil {
		if errors.Is(err, database.ErrShopNotFound) {
			return registerReply, nil
		}
		return "", fmt.Errorf("resolve shop: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case CommandHelp:
		return helpReply, nil
	case CommandMenu:
		return r.menuReply(ctx, shop)
	case CommandStock:
		return r.stockReply(ctx, shop)
	case CommandToday:
		return r.summaryReply(ctx, shop, "today")
	case CommandWeek:
		return r.summaryReply(ctx, shop, "week")
	case CommandMonth:
		return r.summaryReply(ctx, shop, "month")
	case CommandOrders:
		return r.ordersReply(ctx, shop)
	default:
		r.logger.Debug().Str("text", text).Msg("unrecognized bot command")
		return helpReply, nil
	}
}

func (r *Router) menuReply(ctx context.Context, shop *models.Shop) (string, error) {
	products, err := r.store.ProductsByOwner(ctx, shop.LineUserID, false)
	if err != nil {
		return "", fmt.Errorf("list products: %w", err)
	}
	return formatMenu(products), nil
}

func (r *Router) stockReply(ctx context.Context, shop *models.Shop) (string, error) {
	key := redisx.StockReplyKey(shop.LineUserID)
	if reply, ok := redisx.GetString(ctx, r.rdb, key); ok {
		return reply, nil
	}

	products, err := r.store.ProductsByOwner(ctx, shop.LineUserID, true)
	if err != nil {
		return "", fmt.Errorf("list products: %w", err)
	}

	reply := formatStock(products)
	redisx.SetString(ctx, r.rdb, key, reply, r.replyTTL)
	return reply, nil
}

func (r *Router) summaryReply(ctx context.Context, shop *models.Shop, period string) (string, error) {
	key := redisx.SummaryReplyKey(shop.LineUserID, period)
	if reply, ok := redisx.GetString(ctx, r.rdb, key); ok {
		return reply, nil
	}

	w := r.window(period)
	orders, err := r.store.OrdersInWindow(ctx, shop.LineUserID, w.Start, w.End)
	if err != nil {
		return "", fmt.Errorf("orders in window: %w", err)
	}

	reply := formatSummary(period, report.Summarize(orders))
	redisx.SetString(ctx, r.rdb, key, reply, r.replyTTL)
	return reply, nil
}

func (r *Router) ordersReply(ctx context.Context, shop *models.Shop) (string, error) {
	w := r.window("today")
	orders, err := r.store.OrdersInWindow(ctx, shop.LineUserID, w.Start, w.End)
	if err != nil {
		return "", fmt.Errorf("orders in window: %w", err)
	}
	return formatOrders(orders, r.loc), nil
}

func (r *Router) window(period string) report.Window {
	now := r.now()
	switch period {
	case "week":
		return report.WeekWindow(now, r.loc)
	case "month":
		return report.MonthWindow(now, r.loc)
	default:
		return report.TodayWindow(now, r.loc)
	}
}

// InvalidateStock drops the cached stock reply for an owner after a stock
// write so the next query reflects the new count.
func (r *Router) InvalidateStock(ctx context.Context, ownerID string) {
	redisx.Delete(ctx, r.rdb, redisx.StockReplyKey(ownerID))
}
