package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/common/kafka"
)

// RecordEventConsumer tails the record topic and logs every change. It backs
// the "events" command used to audit what the service has published.
type RecordEventConsumer struct {
	consumer *kafka.Consumer
	logger   *zap.Logger
	onEvent  func(kafka.CloudEvent)
}

// NewRecordEventConsumer creates a consumer for topic in group groupID.
func NewRecordEventConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *RecordEventConsumer {
	return &RecordEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, topic, logger),
		logger:   logger,
	}
}

// OnEvent registers a callback run after each recognised event is logged.
func (c *RecordEventConsumer) OnEvent(fn func(kafka.CloudEvent)) {
	c.onEvent = fn
}

// Start consumes until ctx is cancelled.
func (c *RecordEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying consumer.
func (c *RecordEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RecordEventConsumer) handleMessage(_ context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from transport topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // don't retry malformed messages
	}
	return c.HandleEvent(ce)
}

// HandleEvent logs a single decoded event.
func (c *RecordEventConsumer) HandleEvent(ce kafka.CloudEvent) error {
	switch ce.Type {
	case RecordCreated, RecordUpdated:
		var evt RecordEvent
		if err := ce.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse record event data", zap.String("type", ce.Type), zap.Error(err))
			return nil
		}
		c.logger.Info("transport record changed",
			zap.String("type", ce.Type),
			zap.Int64("record_id", evt.RecordID),
			zap.String("vehicle_no", evt.VehicleNo),
			zap.Float64("amount", evt.Amount),
		)
	case RecordDeleted:
		var evt RecordDeletedEvent
		if err := ce.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse record deleted data", zap.Error(err))
			return nil
		}
		c.logger.Info("transport record deleted", zap.Int64("record_id", evt.RecordID))
	default:
		c.logger.Debug("ignoring unhandled event type", zap.String("type", ce.Type))
		return nil
	}
	if c.onEvent != nil {
		c.onEvent(ce)
	}
	return nil
}
