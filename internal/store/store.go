package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vendor-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a lookup matches no row. Callers check it
// with errors.Is instead of inspecting sql.ErrNoRows.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateVendor inserts a vendor and fills in generated fields
func (s *Store) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (name, contact_details, address, vendor_code,
			on_time_delivery_rate, quality_rating_avg, average_response_time, fulfillment_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, vendor, query,
		vendor.Name, vendor.ContactDetails, vendor.Address, vendor.VendorCode,
		vendor.OnTimeDeliveryRate, vendor.QualityRatingAvg,
		vendor.AverageResponseTime, vendor.FulfillmentRate)
}

// GetVendorByID retrieves a vendor by ID
func (s *Store) GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.GetContext(ctx, &vendor, "SELECT * FROM vendors WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("vendor %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// ListVendors retrieves all vendors
func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := s.db.SelectContext(ctx, &vendors, "SELECT * FROM vendors ORDER BY id")
	return vendors, err
}

// UpdateVendor persists the full vendor row
func (s *Store) UpdateVendor(ctx context.Context, vendor *models.Vendor) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE vendors
		SET name = $1, contact_details = $2, address = $3, vendor_code = $4,
			on_time_delivery_rate = $5, quality_rating_avg = $6,
			average_response_time = $7, fulfillment_rate = $8, updated_at = NOW()
		WHERE id = $9`,
		vendor.Name, vendor.ContactDetails, vendor.Address, vendor.VendorCode,
		vendor.OnTimeDeliveryRate, vendor.QualityRatingAvg,
		vendor.AverageResponseTime, vendor.FulfillmentRate, vendor.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("vendor %d: %w", vendor.ID, ErrNotFound)
	}
	return nil
}

// UpdateVendorOnTimeDeliveryRate updates the cached on-time delivery rate
func (s *Store) UpdateVendorOnTimeDeliveryRate(ctx context.Context, vendorID int64, rate float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE vendors SET on_time_delivery_rate = $1, updated_at = NOW() WHERE id = $2",
		rate, vendorID)
	return err
}

// UpdateVendorQualityRatingAvg updates the cached quality rating average
func (s *Store) UpdateVendorQualityRatingAvg(ctx context.Context, vendorID int64, avg float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE vendors SET quality_rating_avg = $1, updated_at = NOW() WHERE id = $2",
		avg, vendorID)
	return err
}

// UpdateVendorAverageResponseTime updates the cached average response time in hours
func (s *Store) UpdateVendorAverageResponseTime(ctx context.Context, vendorID int64, hours float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE vendors SET average_response_time = $1, updated_at = NOW() WHERE id = $2",
		hours, vendorID)
	return err
}

// UpdateVendorFulfillmentRate updates the cached fulfillment rate
func (s *Store) UpdateVendorFulfillmentRate(ctx context.Context, vendorID int64, rate float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE vendors SET fulfillment_rate = $1, updated_at = NOW() WHERE id = $2",
		rate, vendorID)
	return err
}

// DeleteVendor deletes a vendor and cascades to its purchase orders and
// historical snapshots within one transaction.
func (s *Store) DeleteVendor(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM historical_performance WHERE vendor_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete performance history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM purchase_orders WHERE vendor_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete purchase orders: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM vendors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("vendor %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}
