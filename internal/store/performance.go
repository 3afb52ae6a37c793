package store

import (
	"context"
	"database/sql"

	"vendor-service/internal/models"
)

// CreateSnapshot appends a historical performance row. Snapshots are
// never updated or deleted outside the vendor cascade.
func (s *Store) CreateSnapshot(ctx context.Context, snap *models.HistoricalPerformance) error {
	query := `
		INSERT INTO historical_performance (vendor_id, date,
			on_time_delivery_rate, quality_rating_avg, average_response_time, fulfillment_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return s.db.GetContext(ctx, &snap.ID, query,
		snap.VendorID, snap.Date,
		snap.OnTimeDeliveryRate, snap.QualityRatingAvg,
		snap.AverageResponseTime, snap.FulfillmentRate)
}

// LatestSnapshotByVendor returns the most recent snapshot for a vendor,
// or nil when the vendor has no history yet.
func (s *Store) LatestSnapshotByVendor(ctx context.Context, vendorID int64) (*models.HistoricalPerformance, error) {
	var snap models.HistoricalPerformance
	err := s.db.GetContext(ctx, &snap,
		"SELECT * FROM historical_performance WHERE vendor_id = $1 ORDER BY date DESC LIMIT 1",
		vendorID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
