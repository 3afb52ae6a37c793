package worker

import (
	"context"
	"log"

	"vendor-service/internal/broker"
	"vendor-service/internal/models"
	"vendor-service/internal/redisclient"
)

// PerformanceWorker consumes snapshot events and keeps the Redis
// performance cache warm, so performance reads after a recompute hit the
// cache instead of the database.
type PerformanceWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *redisclient.Client
}

// NewPerformanceWorker creates a new performance worker
func NewPerformanceWorker(consumer *broker.Consumer, cache *redisclient.Client) *PerformanceWorker {
	eventHandler := broker.NewEventHandler()
	w := &PerformanceWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		cache:        cache,
	}

	eventHandler.OnSnapshotRecorded(w.handleSnapshotRecorded)
	return w
}

func (w *PerformanceWorker) handleSnapshotRecorded(ctx context.Context, event *models.SnapshotRecordedEvent) error {
	report := &models.PerformanceReport{
		OnTimeDeliveryRate:  event.OnTimeDeliveryRate,
		QualityRatingAvg:    event.QualityRatingAvg,
		AverageResponseTime: event.AverageResponseTime,
		FulfillmentRate:     event.FulfillmentRate,
	}

	if err := w.cache.SetSnapshot(ctx, event.VendorID, report); err != nil {
		log.Printf("Failed to warm snapshot cache for vendor %d: %v", event.VendorID, err)
		return err
	}

	log.Printf("Snapshot cache warmed for vendor %d (snapshot %d)", event.VendorID, event.SnapshotID)
	return nil
}

// Start starts the worker
func (w *PerformanceWorker) Start(ctx context.Context) error {
	log.Println("Starting performance worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PerformanceWorker) Stop() error {
	log.Println("Stopping performance worker...")
	return w.consumer.Close()
}
