package service

import (
	"context"
	"time"

	"vendor-service/internal/models"
)

// Per-entity repository interfaces, satisfied by *store.Store. Services
// depend on these rather than the concrete store so the metric logic can
// be exercised against in-memory fakes.

// VendorStore is the vendor repository
type VendorStore interface {
	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, vendor *models.Vendor) error
	DeleteVendor(ctx context.Context, id int64) error
	UpdateVendorOnTimeDeliveryRate(ctx context.Context, vendorID int64, rate float64) error
	UpdateVendorQualityRatingAvg(ctx context.Context, vendorID int64, avg float64) error
	UpdateVendorAverageResponseTime(ctx context.Context, vendorID int64, hours float64) error
	UpdateVendorFulfillmentRate(ctx context.Context, vendorID int64, rate float64) error
}

// PurchaseOrderStore is the purchase-order repository
type PurchaseOrderStore interface {
	CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error
	GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error)
	ListPurchaseOrdersByVendor(ctx context.Context, vendorID int64) ([]models.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error
	DeletePurchaseOrder(ctx context.Context, id int64) error
	SetAcknowledgementDate(ctx context.Context, id int64, ackedAt time.Time) error
	CountCompletedDeliveredBy(ctx context.Context, cutoff time.Time) (int64, error)
	CountCompletedByVendor(ctx context.Context, vendorID int64) (int64, error)
}

// PerformanceStore is the historical-snapshot repository
type PerformanceStore interface {
	CreateSnapshot(ctx context.Context, snap *models.HistoricalPerformance) error
	LatestSnapshotByVendor(ctx context.Context, vendorID int64) (*models.HistoricalPerformance, error)
}

// SnapshotCache caches the latest performance report per vendor and
// provides the advisory per-vendor recompute lock.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, vendorID int64) (*models.PerformanceReport, error)
	SetSnapshot(ctx context.Context, vendorID int64, report *models.PerformanceReport) error
	Invalidate(ctx context.Context, vendorID int64) error
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// EventPublisher publishes performance domain events
type EventPublisher interface {
	PublishPerformanceRecalculated(ctx context.Context, event *models.PerformanceRecalculatedEvent) error
	PublishSnapshotRecorded(ctx context.Context, event *models.SnapshotRecordedEvent) error
	PublishPurchaseOrderAcknowledged(ctx context.Context, event *models.PurchaseOrderAcknowledgedEvent) error
}
