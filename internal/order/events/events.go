package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeOrderPlaced    = "order.placed"
	TypeOrderPaid      = "order.paid"
	TypeOrderDelivered = "order.delivered"

	publishTimeout = 5 * time.Second
)

type Event struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Items      []ItemPayload `json:"items"`
	TotalPrice float64       `json:"total_price"`
	IsPaid     bool          `json:"is_paid"`
}

type ItemPayload struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

func NewEvent(eventType string, o *model.Order) Event {
	items := make([]ItemPayload, len(o.OrderItems))
	for i, it := range o.OrderItems {
		items[i] = ItemPayload{ProductID: it.ProductID, SKU: it.SKU, Quantity: it.Qty}
	}
	return Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload: OrderPayload{
			ID:         o.ID,
			UserID:     o.UserID,
			Items:      items,
			TotalPrice: o.TotalPrice,
			IsPaid:     o.IsPaid,
		},
		Timestamp: time.Now().UTC(),
	}
}

type producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Publisher emits order lifecycle events after the state change has
// committed. A failed publish is logged and never fails the request.
type Publisher struct {
	producer producer
	logger   logger.ZapLogger
}

// NewPublisher returns a publisher that drops events when p is nil.
func NewPublisher(p producer, log logger.ZapLogger) *Publisher {
	return &Publisher{producer: p, logger: log}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, o *model.Order) {
	if p == nil || p.producer == nil {
		return
	}

	event := NewEvent(eventType, o)
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.producer.Publish(ctx, o.ID, data); err != nil {
		p.logger.Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("order event published", zap.String("event_type", eventType), zap.String("order_id", o.ID))
}
