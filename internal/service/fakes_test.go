package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vendor-service/internal/models"
	"vendor-service/internal/store"
)

// fakeStore is an in-memory implementation of the three repository
// interfaces used to exercise the metric logic without a database.
type fakeStore struct {
	vendors   map[int64]*models.Vendor
	orders    map[int64]*models.PurchaseOrder
	snapshots []models.HistoricalPerformance
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vendors: make(map[int64]*models.Vendor),
		orders:  make(map[int64]*models.PurchaseOrder),
	}
}

func (f *fakeStore) addVendor(v models.Vendor) *models.Vendor {
	f.nextID++
	v.ID = f.nextID
	f.vendors[v.ID] = &v
	return &v
}

func (f *fakeStore) addOrder(po models.PurchaseOrder) *models.PurchaseOrder {
	f.nextID++
	po.ID = f.nextID
	f.orders[po.ID] = &po
	return &po
}

func (f *fakeStore) CreateVendor(_ context.Context, vendor *models.Vendor) error {
	f.nextID++
	vendor.ID = f.nextID
	vendor.CreatedAt = time.Now()
	vendor.UpdatedAt = vendor.CreatedAt
	copied := *vendor
	f.vendors[vendor.ID] = &copied
	return nil
}

func (f *fakeStore) GetVendorByID(_ context.Context, id int64) (*models.Vendor, error) {
	v, ok := f.vendors[id]
	if !ok {
		return nil, fmt.Errorf("vendor %d: %w", id, store.ErrNotFound)
	}
	copied := *v
	return &copied, nil
}

func (f *fakeStore) ListVendors(_ context.Context) ([]models.Vendor, error) {
	out := make([]models.Vendor, 0, len(f.vendors))
	for _, v := range f.vendors {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateVendor(_ context.Context, vendor *models.Vendor) error {
	if _, ok := f.vendors[vendor.ID]; !ok {
		return fmt.Errorf("vendor %d: %w", vendor.ID, store.ErrNotFound)
	}
	copied := *vendor
	f.vendors[vendor.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteVendor(_ context.Context, id int64) error {
	if _, ok := f.vendors[id]; !ok {
		return fmt.Errorf("vendor %d: %w", id, store.ErrNotFound)
	}
	delete(f.vendors, id)
	for poID, po := range f.orders {
		if po.VendorID == id {
			delete(f.orders, poID)
		}
	}
	kept := f.snapshots[:0]
	for _, snap := range f.snapshots {
		if snap.VendorID != id {
			kept = append(kept, snap)
		}
	}
	f.snapshots = kept
	return nil
}

func (f *fakeStore) UpdateVendorOnTimeDeliveryRate(_ context.Context, vendorID int64, rate float64) error {
	if v, ok := f.vendors[vendorID]; ok {
		v.OnTimeDeliveryRate = rate
	}
	return nil
}

func (f *fakeStore) UpdateVendorQualityRatingAvg(_ context.Context, vendorID int64, avg float64) error {
	if v, ok := f.vendors[vendorID]; ok {
		v.QualityRatingAvg = avg
	}
	return nil
}

func (f *fakeStore) UpdateVendorAverageResponseTime(_ context.Context, vendorID int64, hours float64) error {
	if v, ok := f.vendors[vendorID]; ok {
		v.AverageResponseTime = hours
	}
	return nil
}

func (f *fakeStore) UpdateVendorFulfillmentRate(_ context.Context, vendorID int64, rate float64) error {
	if v, ok := f.vendors[vendorID]; ok {
		v.FulfillmentRate = rate
	}
	return nil
}

func (f *fakeStore) CreatePurchaseOrder(_ context.Context, po *models.PurchaseOrder) error {
	f.nextID++
	po.ID = f.nextID
	po.CreatedAt = time.Now()
	po.UpdatedAt = po.CreatedAt
	copied := *po
	f.orders[po.ID] = &copied
	return nil
}

func (f *fakeStore) GetPurchaseOrderByID(_ context.Context, id int64) (*models.PurchaseOrder, error) {
	po, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("purchase order %d: %w", id, store.ErrNotFound)
	}
	copied := *po
	return &copied, nil
}

func (f *fakeStore) ListPurchaseOrders(_ context.Context) ([]models.PurchaseOrder, error) {
	out := make([]models.PurchaseOrder, 0, len(f.orders))
	for _, po := range f.orders {
		out = append(out, *po)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListPurchaseOrdersByVendor(_ context.Context, vendorID int64) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, po := range f.orders {
		if po.VendorID == vendorID {
			out = append(out, *po)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdatePurchaseOrder(_ context.Context, po *models.PurchaseOrder) error {
	if _, ok := f.orders[po.ID]; !ok {
		return fmt.Errorf("purchase order %d: %w", po.ID, store.ErrNotFound)
	}
	copied := *po
	f.orders[po.ID] = &copied
	return nil
}

func (f *fakeStore) DeletePurchaseOrder(_ context.Context, id int64) error {
	if _, ok := f.orders[id]; !ok {
		return fmt.Errorf("purchase order %d: %w", id, store.ErrNotFound)
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeStore) SetAcknowledgementDate(_ context.Context, id int64, ackedAt time.Time) error {
	po, ok := f.orders[id]
	if !ok {
		return fmt.Errorf("purchase order %d: %w", id, store.ErrNotFound)
	}
	po.AcknowledgementDate = &ackedAt
	return nil
}

func (f *fakeStore) CountCompletedDeliveredBy(_ context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for _, po := range f.orders {
		if isCompleted(po.Status) && !po.DeliveryDate.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountCompletedByVendor(_ context.Context, vendorID int64) (int64, error) {
	var count int64
	for _, po := range f.orders {
		if po.VendorID == vendorID && isCompleted(po.Status) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateSnapshot(_ context.Context, snap *models.HistoricalPerformance) error {
	f.nextID++
	snap.ID = f.nextID
	f.snapshots = append(f.snapshots, *snap)
	return nil
}

func (f *fakeStore) LatestSnapshotByVendor(_ context.Context, vendorID int64) (*models.HistoricalPerformance, error) {
	var latest *models.HistoricalPerformance
	for i := range f.snapshots {
		snap := f.snapshots[i]
		if snap.VendorID != vendorID {
			continue
		}
		if latest == nil || snap.Date.After(latest.Date) {
			latest = &snap
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

// fakeCache is an in-memory SnapshotCache
type fakeCache struct {
	reports map[int64]*models.PerformanceReport
	locks   map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		reports: make(map[int64]*models.PerformanceReport),
		locks:   make(map[string]bool),
	}
}

func (f *fakeCache) GetSnapshot(_ context.Context, vendorID int64) (*models.PerformanceReport, error) {
	r, ok := f.reports[vendorID]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeCache) SetSnapshot(_ context.Context, vendorID int64, report *models.PerformanceReport) error {
	copied := *report
	f.reports[vendorID] = &copied
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, vendorID int64) error {
	delete(f.reports, vendorID)
	return nil
}

func (f *fakeCache) AcquireLock(_ context.Context, lockKey string, _ time.Duration) (bool, error) {
	if f.locks[lockKey] {
		return false, nil
	}
	f.locks[lockKey] = true
	return true, nil
}

func (f *fakeCache) ReleaseLock(_ context.Context, lockKey string) error {
	delete(f.locks, lockKey)
	return nil
}

// fakePublisher records published events
type fakePublisher struct {
	recalculated []*models.PerformanceRecalculatedEvent
	snapshots    []*models.SnapshotRecordedEvent
	acknowledged []*models.PurchaseOrderAcknowledgedEvent
}

func (f *fakePublisher) PublishPerformanceRecalculated(_ context.Context, event *models.PerformanceRecalculatedEvent) error {
	f.recalculated = append(f.recalculated, event)
	return nil
}

func (f *fakePublisher) PublishSnapshotRecorded(_ context.Context, event *models.SnapshotRecordedEvent) error {
	f.snapshots = append(f.snapshots, event)
	return nil
}

func (f *fakePublisher) PublishPurchaseOrderAcknowledged(_ context.Context, event *models.PurchaseOrderAcknowledgedEvent) error {
	f.acknowledged = append(f.acknowledged, event)
	return nil
}

func newPerformanceFixture() (*PerformanceService, *fakeStore, *fakeCache, *fakePublisher) {
	fs := newFakeStore()
	fc := newFakeCache()
	fp := &fakePublisher{}
	calc := NewMetricsCalculator(fs)
	svc := NewPerformanceService(fs, fs, fs, calc, fc, fp, time.Second)
	return svc, fs, fc, fp
}
