package events

import (
	"context"

	"github.com/isabelayared/pharmastock-system/pkg/logger"
	"github.com/isabelayared/pharmastock-system/pkg/messaging"
)

// Sink is where events end up. messaging.Publisher satisfies it in
// production; a recording mock does in tests.
type Sink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// InventoryEventPublisher publishes inventory-related events. Methods are
// nil-receiver safe so handler tests can run without a broker.
type InventoryEventPublisher struct {
	sink   Sink
	logger *logger.Logger
}

// NewInventoryEventPublisher creates a publisher bound to the inventory
// events exchange
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "pharmastock", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		sink:   publisher,
		logger: log,
	}, nil
}

// NewWithSink creates a publisher over an arbitrary sink. Used in tests.
func NewWithSink(sink Sink, log *logger.Logger) *InventoryEventPublisher {
	return &InventoryEventPublisher{sink: sink, logger: log}
}

// PublishStockDebited publishes the result of a sale allocation
func (p *InventoryEventPublisher) PublishStockDebited(ctx context.Context, event messaging.StockDebitedEvent) {
	if p == nil {
		return
	}

	if err := p.sink.Publish(ctx, messaging.EventStockDebited, event); err != nil {
		p.logger.Error().Err(err).Str("product_id", event.ProductID).Msg("failed to publish stock debited event")
	}
}

// PublishProductRegistered publishes a stock registration
func (p *InventoryEventPublisher) PublishProductRegistered(ctx context.Context, event messaging.ProductRegisteredEvent) {
	if p == nil {
		return
	}

	if err := p.sink.Publish(ctx, messaging.EventProductRegistered, event); err != nil {
		p.logger.Error().Err(err).Str("product_id", event.ProductID).Msg("failed to publish product registered event")
	}
}

// PublishProductDeleted publishes a product removal
func (p *InventoryEventPublisher) PublishProductDeleted(ctx context.Context, productID, productCode string) {
	if p == nil {
		return
	}

	data := messaging.ProductDeletedEvent{
		ProductID:   productID,
		ProductCode: productCode,
	}

	if err := p.sink.Publish(ctx, messaging.EventProductDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", productID).Msg("failed to publish product deleted event")
	}
}

// PublishBatchExpiring publishes one expiring-batch alert
func (p *InventoryEventPublisher) PublishBatchExpiring(ctx context.Context, productName, batchID string, daysRemaining int) {
	if p == nil {
		return
	}

	data := messaging.BatchExpiringEvent{
		ProductName:   productName,
		BatchID:       batchID,
		DaysRemaining: daysRemaining,
	}

	if err := p.sink.Publish(ctx, messaging.EventBatchExpiring, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", batchID).Msg("failed to publish batch expiring event")
	}
}
