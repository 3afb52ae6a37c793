package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"vendor-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing performance domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishPerformanceRecalculated publishes a PerformanceRecalculated event
func (ep *EventPublisher) PublishPerformanceRecalculated(ctx context.Context, event *models.PerformanceRecalculatedEvent) error {
	key := fmt.Sprintf("vendor-%d", event.VendorID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishSnapshotRecorded publishes a SnapshotRecorded event
func (ep *EventPublisher) PublishSnapshotRecorded(ctx context.Context, event *models.SnapshotRecordedEvent) error {
	key := fmt.Sprintf("vendor-%d", event.VendorID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPurchaseOrderAcknowledged publishes a PurchaseOrderAcknowledged event
func (ep *EventPublisher) PublishPurchaseOrderAcknowledged(ctx context.Context, event *models.PurchaseOrderAcknowledgedEvent) error {
	key := fmt.Sprintf("po-%d", event.PurchaseOrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming performance events
type EventHandler struct {
	onSnapshotRecorded func(context.Context, *models.SnapshotRecordedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnSnapshotRecorded registers a handler for SnapshotRecorded events
func (eh *EventHandler) OnSnapshotRecorded(handler func(context.Context, *models.SnapshotRecordedEvent) error) {
	eh.onSnapshotRecorded = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeSnapshotRecorded:
		if eh.onSnapshotRecorded != nil {
			var event models.SnapshotRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SnapshotRecorded event: %w", err)
			}
			return eh.onSnapshotRecorded(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
