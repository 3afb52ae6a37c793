package service

import (
	"context"
	"fmt"
	"time"

	"vendor-service/internal/models"
	"vendor-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lockRetryDelay = 100 * time.Millisecond
const lockRetryAttempts = 5

// PerformanceService recomputes the vendor metric caches after
// purchase-order writes and maintains the historical snapshot table.
type PerformanceService struct {
	vendors   VendorStore
	orders    PurchaseOrderStore
	snapshots PerformanceStore
	calc      *MetricsCalculator
	cache     SnapshotCache
	publisher EventPublisher
	lockTTL   time.Duration
	logger    *zap.Logger
}

// NewPerformanceService creates a new performance service
func NewPerformanceService(
	vendors VendorStore,
	orders PurchaseOrderStore,
	snapshots PerformanceStore,
	calc *MetricsCalculator,
	cache SnapshotCache,
	publisher EventPublisher,
	lockTTL time.Duration,
) *PerformanceService {
	return &PerformanceService{
		vendors:   vendors,
		orders:    orders,
		snapshots: snapshots,
		calc:      calc,
		cache:     cache,
		publisher: publisher,
		lockTTL:   lockTTL,
		logger:    util.GetLogger(),
	}
}

// RecordMetrics recomputes vendor metrics after a purchase-order create
// or update. The conditional pair (on-time rate, quality average) only
// runs when the submitted status is "completed"; response time and
// fulfillment rate always run. A historical snapshot is appended only
// when all four computed values are non-zero, so a cycle that leaves the
// conditional pair uncomputed, or one that legitimately computes 0.0,
// records no snapshot.
func (s *PerformanceService) RecordMetrics(ctx context.Context, vendorID int64, status, rawDeliveryDate, trigger string) error {
	ctx, span := util.StartSpan(ctx, "PerformanceService.RecordMetrics")
	defer span.End()

	start := time.Now()
	defer func() {
		util.MetricRecalcLatency.Observe(time.Since(start).Seconds())
	}()

	// Advisory per-vendor lock. The original sequence ran unlocked and
	// could lose concurrent updates; the lock narrows that window but the
	// write still proceeds if the lock cannot be acquired in time.
	locked := s.acquireVendorLock(ctx, vendorID)
	if locked {
		defer s.releaseVendorLock(ctx, vendorID)
	}

	var onTimeRate, qualityAvg *float64

	if isCompleted(status) {
		cutoff, err := parseCutoff(rawDeliveryDate)
		if err != nil {
			util.RecalculationsFailedTotal.WithLabelValues("invalid_cutoff").Inc()
			return err
		}

		rate, err := s.calc.OnTimeDeliveryRate(ctx, vendorID, cutoff)
		if err != nil {
			util.RecalculationsFailedTotal.WithLabelValues("store_error").Inc()
			return fmt.Errorf("failed to compute on-time delivery rate: %w", err)
		}
		if err := s.vendors.UpdateVendorOnTimeDeliveryRate(ctx, vendorID, rate); err != nil {
			return fmt.Errorf("failed to persist on-time delivery rate: %w", err)
		}
		onTimeRate = &rate

		avg, err := s.calc.QualityRatingAverage(ctx, vendorID)
		if err != nil {
			util.RecalculationsFailedTotal.WithLabelValues("store_error").Inc()
			return fmt.Errorf("failed to compute quality rating average: %w", err)
		}
		if err := s.vendors.UpdateVendorQualityRatingAvg(ctx, vendorID, avg); err != nil {
			return fmt.Errorf("failed to persist quality rating average: %w", err)
		}
		qualityAvg = &avg
	}

	responseTime, err := s.calc.AverageResponseTime(ctx, vendorID)
	if err != nil {
		util.RecalculationsFailedTotal.WithLabelValues("store_error").Inc()
		return fmt.Errorf("failed to compute average response time: %w", err)
	}
	responseHours := responseTime.Hours()
	if err := s.vendors.UpdateVendorAverageResponseTime(ctx, vendorID, responseHours); err != nil {
		return fmt.Errorf("failed to persist average response time: %w", err)
	}

	fulfillmentRate, err := s.calc.FulfillmentRate(ctx, vendorID)
	if err != nil {
		util.RecalculationsFailedTotal.WithLabelValues("store_error").Inc()
		return fmt.Errorf("failed to compute fulfillment rate: %w", err)
	}
	if err := s.vendors.UpdateVendorFulfillmentRate(ctx, vendorID, fulfillmentRate); err != nil {
		return fmt.Errorf("failed to persist fulfillment rate: %w", err)
	}

	util.RecalculationsTotal.WithLabelValues(trigger).Inc()
	s.logger.Info("Vendor metrics recalculated",
		zap.Int64("vendor_id", vendorID),
		zap.String("trigger", trigger),
		zap.Float64("average_response_time_hours", responseHours),
		zap.Float64("fulfillment_rate", fulfillmentRate))

	if onTimeRate != nil && *onTimeRate != 0 &&
		qualityAvg != nil && *qualityAvg != 0 &&
		responseTime != 0 && fulfillmentRate != 0 {
		snap := &models.HistoricalPerformance{
			VendorID:            vendorID,
			Date:                time.Now(),
			OnTimeDeliveryRate:  *onTimeRate,
			QualityRatingAvg:    *qualityAvg,
			AverageResponseTime: responseHours,
			FulfillmentRate:     fulfillmentRate,
		}
		if err := s.snapshots.CreateSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("failed to record performance snapshot: %w", err)
		}
		util.SnapshotsWrittenTotal.Inc()
		s.logger.Info("Performance snapshot recorded",
			zap.Int64("vendor_id", vendorID),
			zap.Int64("snapshot_id", snap.ID))

		s.publishSnapshotRecorded(ctx, snap)
	} else {
		util.SnapshotsSkippedTotal.Inc()
	}

	s.publishRecalculated(ctx, vendorID, trigger, onTimeRate, qualityAvg, responseHours, fulfillmentRate)
	return nil
}

// Acknowledge stamps the acknowledgement date on an order and recomputes
// only the owning vendor's average response time. The other three
// metrics and the snapshot table are untouched.
func (s *PerformanceService) Acknowledge(ctx context.Context, poID int64) error {
	ctx, span := util.StartSpan(ctx, "PerformanceService.Acknowledge")
	defer span.End()

	po, err := s.orders.GetPurchaseOrderByID(ctx, poID)
	if err != nil {
		return err
	}

	ackedAt := time.Now()
	if err := s.orders.SetAcknowledgementDate(ctx, poID, ackedAt); err != nil {
		return fmt.Errorf("failed to set acknowledgement date: %w", err)
	}

	responseTime, err := s.calc.AverageResponseTime(ctx, po.VendorID)
	if err != nil {
		return fmt.Errorf("failed to compute average response time: %w", err)
	}
	responseHours := responseTime.Hours()
	if err := s.vendors.UpdateVendorAverageResponseTime(ctx, po.VendorID, responseHours); err != nil {
		return fmt.Errorf("failed to persist average response time: %w", err)
	}

	util.AcknowledgementsTotal.Inc()
	s.logger.Info("Purchase order acknowledged",
		zap.Int64("po_id", poID),
		zap.Int64("vendor_id", po.VendorID),
		zap.Float64("average_response_time_hours", responseHours))

	event := &models.PurchaseOrderAcknowledgedEvent{
		BaseEvent:           newBaseEvent(models.EventTypePurchaseOrderAcknowledged),
		PurchaseOrderID:     poID,
		VendorID:            po.VendorID,
		AcknowledgementDate: ackedAt,
		AverageResponseTime: responseHours,
	}
	if err := s.publisher.PublishPurchaseOrderAcknowledged(ctx, event); err != nil {
		s.logger.Error("Failed to publish acknowledged event", zap.Error(err))
	}

	return nil
}

// GetVendorPerformance returns the vendor's latest snapshot, preferring
// the cache, or the all-zero default shape when no history exists.
func (s *PerformanceService) GetVendorPerformance(ctx context.Context, vendorID int64) (*models.PerformanceReport, error) {
	ctx, span := util.StartSpan(ctx, "PerformanceService.GetVendorPerformance")
	defer span.End()

	if _, err := s.vendors.GetVendorByID(ctx, vendorID); err != nil {
		return nil, err
	}

	if report, err := s.cache.GetSnapshot(ctx, vendorID); err != nil {
		s.logger.Warn("Snapshot cache read failed, falling back to DB",
			zap.Int64("vendor_id", vendorID), zap.Error(err))
	} else if report != nil {
		util.SnapshotCacheHits.Inc()
		return report, nil
	}
	util.SnapshotCacheMisses.Inc()

	snap, err := s.snapshots.LatestSnapshotByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	report := &models.PerformanceReport{}
	if snap != nil {
		report.OnTimeDeliveryRate = snap.OnTimeDeliveryRate
		report.QualityRatingAvg = snap.QualityRatingAvg
		report.AverageResponseTime = snap.AverageResponseTime
		report.FulfillmentRate = snap.FulfillmentRate
	}

	if err := s.cache.SetSnapshot(ctx, vendorID, report); err != nil {
		s.logger.Warn("Snapshot cache write failed",
			zap.Int64("vendor_id", vendorID), zap.Error(err))
	}

	return report, nil
}

func (s *PerformanceService) acquireVendorLock(ctx context.Context, vendorID int64) bool {
	key := fmt.Sprintf("vendor:%d", vendorID)
	for attempt := 0; attempt < lockRetryAttempts; attempt++ {
		ok, err := s.cache.AcquireLock(ctx, key, s.lockTTL)
		if err != nil {
			s.logger.Warn("Vendor lock unavailable, proceeding unlocked",
				zap.Int64("vendor_id", vendorID), zap.Error(err))
			return false
		}
		if ok {
			return true
		}
		time.Sleep(lockRetryDelay)
	}
	s.logger.Warn("Vendor lock busy, proceeding unlocked", zap.Int64("vendor_id", vendorID))
	return false
}

func (s *PerformanceService) releaseVendorLock(ctx context.Context, vendorID int64) {
	key := fmt.Sprintf("vendor:%d", vendorID)
	if err := s.cache.ReleaseLock(ctx, key); err != nil {
		s.logger.Warn("Failed to release vendor lock",
			zap.Int64("vendor_id", vendorID), zap.Error(err))
	}
}

func (s *PerformanceService) publishSnapshotRecorded(ctx context.Context, snap *models.HistoricalPerformance) {
	event := &models.SnapshotRecordedEvent{
		BaseEvent:           newBaseEvent(models.EventTypeSnapshotRecorded),
		VendorID:            snap.VendorID,
		SnapshotID:          snap.ID,
		Date:                snap.Date,
		OnTimeDeliveryRate:  snap.OnTimeDeliveryRate,
		QualityRatingAvg:    snap.QualityRatingAvg,
		AverageResponseTime: snap.AverageResponseTime,
		FulfillmentRate:     snap.FulfillmentRate,
	}
	if err := s.publisher.PublishSnapshotRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish snapshot event", zap.Error(err))
	}
}

func (s *PerformanceService) publishRecalculated(ctx context.Context, vendorID int64, trigger string, onTimeRate, qualityAvg *float64, responseHours, fulfillmentRate float64) {
	event := &models.PerformanceRecalculatedEvent{
		BaseEvent:           newBaseEvent(models.EventTypePerformanceRecalculated),
		VendorID:            vendorID,
		Trigger:             trigger,
		OnTimeDeliveryRate:  onTimeRate,
		QualityRatingAvg:    qualityAvg,
		AverageResponseTime: responseHours,
		FulfillmentRate:     fulfillmentRate,
	}
	if err := s.publisher.PublishPerformanceRecalculated(ctx, event); err != nil {
		s.logger.Error("Failed to publish recalculated event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
