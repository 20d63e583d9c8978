// Package events publishes order lifecycle events for downstream consumers
// (analytics, notifications). Publishing is best-effort and asynchronous;
// the request path never blocks on the broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/chanida/go-bakery-shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	OwnerID     string          `json:"owner_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

type OrderStatusChangedPayload struct {
	OrderID string             `json:"order_id"`
	OwnerID string             `json:"owner_id"`
	Status  models.OrderStatus `json:"status"`
}

func NewEnvelope(eventType string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}
