package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/events"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// InventoryListener decrements SKU stock when an order is paid.
type InventoryListener struct {
	consumer messageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer messageReader, uc inventory.UseCase, log logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

// Start blocks until ctx is done.
func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("starting inventory listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping inventory listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event events.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	if event.EventType != events.TypeOrderPaid {
		return
	}

	l.logger.Info("processing order.paid", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		_, err := l.uc.AdjustStock(ctx, &dto.AdjustStockInput{
			SKU:            item.SKU,
			QuantityChange: -item.Quantity,
			MovementType:   model.MovementSale,
			Notes:          "order paid",
			ReferenceType:  "order",
			ReferenceID:    event.Payload.ID,
			UserID:         "system",
		})
		if err != nil {
			// Stock stays a display hint; a shortfall is reported, not blocked.
			l.logger.Warn("failed to decrement stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("sku", item.SKU),
				zap.Int("qty", item.Quantity),
				zap.Error(err),
			)
		}
	}
}
