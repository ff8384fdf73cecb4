package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-warehouse-service/internal/stock"
	"github.com/fekuna/omnipos-warehouse-service/internal/stock/dto"
	"github.com/fekuna/omnipos-warehouse-service/pkg/broker"
	"github.com/fekuna/omnipos-warehouse-service/pkg/logger"
	"go.uber.org/zap"
)

type StockListener struct {
	consumer *broker.KafkaConsumer
	uc       stock.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer *broker.KafkaConsumer, uc stock.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting Stock Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Stock Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID       string             `json:"id"`
	TenantID string             `json:"tenant_id"`
	Items    []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	LineID         string  `json:"line_id"`
	ProductID      string  `json:"product_id"`
	VariantID      *string `json:"variant_id"`
	Quantity       float64 `json:"quantity"`
	AllowBackorder bool    `json:"allow_backorder"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCreated" {
		return
	}

	l.logger.Info("Processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		input := &dto.ReserveStockInput{
			TenantID:       event.Payload.TenantID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Quantity:       item.Quantity,
			OrderReference: event.Payload.ID,
			OrderLineID:    item.LineID,
			AllowBackorder: item.AllowBackorder,
			UserID:         "system",
		}

		_, err := l.uc.ReserveStock(ctx, input)
		if err != nil {
			var insufficient *stock.InsufficientStockError
			if errors.As(err, &insufficient) {
				l.logger.Warn("Order line not reservable",
					zap.String("order_id", event.Payload.ID),
					zap.String("line_id", item.LineID),
					zap.Float64("shortfall", insufficient.Shortfall()),
				)
				continue
			}
			l.logger.Error("Failed to reserve stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
