package service

import (
	"context"
	"testing"
	"time"

	"vendor-service/internal/models"
	"vendor-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMetricsPendingSkipsConditionalPair(t *testing.T) {
	svc, fs, _, fp := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{
		Name: "A", VendorCode: "VA",
		OnTimeDeliveryRate: 0.9, QualityRatingAvg: 4.5,
	})

	issued := tm("2024-05-01 08:00:00")
	acked := issued.Add(2 * time.Hour)
	fs.addOrder(models.PurchaseOrder{
		VendorID: vendor.ID, Status: models.StatusPending,
		IssueDate: issued, AcknowledgementDate: &acked,
	})

	err := svc.RecordMetrics(context.Background(), vendor.ID, models.StatusPending, "2024-05-10 12:00:00", "create")
	require.NoError(t, err)

	got := fs.vendors[vendor.ID]
	assert.Equal(t, 0.9, got.OnTimeDeliveryRate, "on-time rate must not be touched on pending status")
	assert.Equal(t, 4.5, got.QualityRatingAvg, "quality average must not be touched on pending status")
	assert.Equal(t, 2.0, got.AverageResponseTime)
	assert.Equal(t, 0.0, got.FulfillmentRate)

	assert.Empty(t, fs.snapshots, "no snapshot when the conditional pair did not run")
	assert.Empty(t, fp.snapshots)
	require.Len(t, fp.recalculated, 1)
	assert.Nil(t, fp.recalculated[0].OnTimeDeliveryRate)
	assert.Nil(t, fp.recalculated[0].QualityRatingAvg)
}

func TestRecordMetricsCompletedWritesSnapshot(t *testing.T) {
	svc, fs, _, fp := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{Name: "A", VendorCode: "VA"})

	issued := tm("2024-05-01 08:00:00")
	acked := issued.Add(3 * time.Hour)
	fs.addOrder(models.PurchaseOrder{
		VendorID: vendor.ID, Status: models.StatusCompleted,
		DeliveryDate: tm("2024-05-09 08:00:00"),
		IssueDate:    issued, AcknowledgementDate: &acked,
		QualityRating: f64(4.0),
	})

	err := svc.RecordMetrics(context.Background(), vendor.ID, models.StatusCompleted, "2024-05-10 12:00:00", "create")
	require.NoError(t, err)

	got := fs.vendors[vendor.ID]
	assert.Equal(t, 1.0, got.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, got.QualityRatingAvg)
	assert.Equal(t, 3.0, got.AverageResponseTime)
	assert.Equal(t, 1.0, got.FulfillmentRate)

	require.Len(t, fs.snapshots, 1)
	snap := fs.snapshots[0]
	assert.Equal(t, vendor.ID, snap.VendorID)
	assert.Equal(t, 1.0, snap.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, snap.QualityRatingAvg)
	assert.Equal(t, 3.0, snap.AverageResponseTime)
	assert.Equal(t, 1.0, snap.FulfillmentRate)
	assert.False(t, snap.Date.IsZero())

	require.Len(t, fp.snapshots, 1)
	assert.Equal(t, snap.ID, fp.snapshots[0].SnapshotID)
	require.Len(t, fp.recalculated, 1)
	assert.Equal(t, "create", fp.recalculated[0].Trigger)
}

func TestRecordMetricsZeroValueSuppressesSnapshot(t *testing.T) {
	svc, fs, _, fp := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{Name: "A", VendorCode: "VA"})

	// Delivered after the cutoff: on-time rate computes to a legitimate
	// 0.0, which still suppresses the snapshot.
	issued := tm("2024-05-01 08:00:00")
	acked := issued.Add(3 * time.Hour)
	fs.addOrder(models.PurchaseOrder{
		VendorID: vendor.ID, Status: models.StatusCompleted,
		DeliveryDate: tm("2024-05-20 08:00:00"),
		IssueDate:    issued, AcknowledgementDate: &acked,
		QualityRating: f64(4.0),
	})

	err := svc.RecordMetrics(context.Background(), vendor.ID, models.StatusCompleted, "2024-05-10 12:00:00", "update")
	require.NoError(t, err)

	got := fs.vendors[vendor.ID]
	assert.Equal(t, 0.0, got.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, got.QualityRatingAvg)

	assert.Empty(t, fs.snapshots)
	assert.Empty(t, fp.snapshots)
	require.Len(t, fp.recalculated, 1)
}

func TestRecordMetricsInvalidCutoffAbortsBeforeWrites(t *testing.T) {
	svc, fs, _, fp := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{
		Name: "A", VendorCode: "VA",
		OnTimeDeliveryRate: 0.9, QualityRatingAvg: 4.5,
		AverageResponseTime: 7.0, FulfillmentRate: 0.8,
	})
	fs.addOrder(models.PurchaseOrder{
		VendorID: vendor.ID, Status: models.StatusCompleted,
		DeliveryDate: tm("2024-05-09 08:00:00"),
		IssueDate:    tm("2024-05-01 08:00:00"),
	})

	err := svc.RecordMetrics(context.Background(), vendor.ID, models.StatusCompleted, "2024-05-10T12:00:00Z", "update")
	require.Error(t, err)

	var inv *InvalidInputError
	require.ErrorAs(t, err, &inv)

	got := fs.vendors[vendor.ID]
	assert.Equal(t, 0.9, got.OnTimeDeliveryRate)
	assert.Equal(t, 4.5, got.QualityRatingAvg)
	assert.Equal(t, 7.0, got.AverageResponseTime)
	assert.Equal(t, 0.8, got.FulfillmentRate)
	assert.Empty(t, fs.snapshots)
	assert.Empty(t, fp.recalculated)
}

func TestAcknowledgeUpdatesOnlyResponseTime(t *testing.T) {
	svc, fs, _, fp := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{
		Name: "A", VendorCode: "VA",
		OnTimeDeliveryRate: 0.9, QualityRatingAvg: 4.5, FulfillmentRate: 0.8,
	})
	po := fs.addOrder(models.PurchaseOrder{
		VendorID: vendor.ID, Status: models.StatusPending,
		IssueDate: time.Now().Add(-4 * time.Hour),
	})

	err := svc.Acknowledge(context.Background(), po.ID)
	require.NoError(t, err)

	require.NotNil(t, fs.orders[po.ID].AcknowledgementDate)

	got := fs.vendors[vendor.ID]
	assert.InDelta(t, 4.0, got.AverageResponseTime, 0.01)
	assert.Equal(t, 0.9, got.OnTimeDeliveryRate)
	assert.Equal(t, 4.5, got.QualityRatingAvg)
	assert.Equal(t, 0.8, got.FulfillmentRate)

	assert.Empty(t, fs.snapshots, "acknowledgement must not append a snapshot")
	require.Len(t, fp.acknowledged, 1)
	assert.Equal(t, po.ID, fp.acknowledged[0].PurchaseOrderID)
}

func TestAcknowledgeAgainResetsTimestamp(t *testing.T) {
	svc, fs, _, _ := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{Name: "A", VendorCode: "VA"})
	earlier := time.Now().Add(-1 * time.Hour)
	po := fs.addOrder(models.PurchaseOrder{
		VendorID: vendor.ID, Status: models.StatusPending,
		IssueDate: time.Now().Add(-2 * time.Hour), AcknowledgementDate: &earlier,
	})

	err := svc.Acknowledge(context.Background(), po.ID)
	require.NoError(t, err)
	assert.True(t, fs.orders[po.ID].AcknowledgementDate.After(earlier))
}

func TestAcknowledgeUnknownOrder(t *testing.T) {
	svc, _, _, _ := newPerformanceFixture()

	err := svc.Acknowledge(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetVendorPerformanceUnknownVendor(t *testing.T) {
	svc, _, _, _ := newPerformanceFixture()

	_, err := svc.GetVendorPerformance(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetVendorPerformanceNoHistory(t *testing.T) {
	svc, fs, fc, _ := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{Name: "A", VendorCode: "VA"})

	report, err := svc.GetVendorPerformance(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.PerformanceReport{}, report)
	assert.NotNil(t, fc.reports[vendor.ID], "zero report should still be cached")
}

func TestGetVendorPerformanceReturnsLatestSnapshot(t *testing.T) {
	svc, fs, _, _ := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{Name: "A", VendorCode: "VA"})
	fs.snapshots = append(fs.snapshots,
		models.HistoricalPerformance{
			VendorID: vendor.ID, Date: tm("2024-05-01 00:00:00"),
			OnTimeDeliveryRate: 0.5, QualityRatingAvg: 3.0,
			AverageResponseTime: 10.0, FulfillmentRate: 0.4,
		},
		models.HistoricalPerformance{
			VendorID: vendor.ID, Date: tm("2024-06-01 00:00:00"),
			OnTimeDeliveryRate: 1.0, QualityRatingAvg: 4.0,
			AverageResponseTime: 5.0, FulfillmentRate: 0.9,
		},
	)

	report, err := svc.GetVendorPerformance(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, report.QualityRatingAvg)
	assert.Equal(t, 5.0, report.AverageResponseTime)
	assert.Equal(t, 0.9, report.FulfillmentRate)
}

func TestGetVendorPerformancePrefersCache(t *testing.T) {
	svc, fs, fc, _ := newPerformanceFixture()

	vendor := fs.addVendor(models.Vendor{Name: "A", VendorCode: "VA"})
	fs.snapshots = append(fs.snapshots, models.HistoricalPerformance{
		VendorID: vendor.ID, Date: tm("2024-06-01 00:00:00"),
		OnTimeDeliveryRate: 1.0, QualityRatingAvg: 4.0,
		AverageResponseTime: 5.0, FulfillmentRate: 0.9,
	})
	fc.reports[vendor.ID] = &models.PerformanceReport{
		OnTimeDeliveryRate: 0.7, QualityRatingAvg: 3.5,
		AverageResponseTime: 6.0, FulfillmentRate: 0.6,
	}

	report, err := svc.GetVendorPerformance(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.7, report.OnTimeDeliveryRate, "cached report wins over the snapshot table")
}
