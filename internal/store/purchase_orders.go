package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vendor-service/internal/models"
)

// CreatePurchaseOrder inserts a purchase order and fills in generated fields
func (s *Store) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (po_number, vendor_id, order_date, delivery_date,
			items, quantity, status, quality_rating, issue_date, acknowledgement_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, po, query,
		po.PONumber, po.VendorID, po.OrderDate, po.DeliveryDate,
		po.Items, po.Quantity, po.Status, po.QualityRating,
		po.IssueDate, po.AcknowledgementDate)
}

// GetPurchaseOrderByID retrieves a purchase order by ID
func (s *Store) GetPurchaseOrderByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := s.db.GetContext(ctx, &po, "SELECT * FROM purchase_orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// ListPurchaseOrders retrieves all purchase orders
func (s *Store) ListPurchaseOrders(ctx context.Context) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM purchase_orders ORDER BY id")
	return orders, err
}

// ListPurchaseOrdersByVendor retrieves the full order set for a vendor.
// The metric calculators read this set and derive statistics in memory.
func (s *Store) ListPurchaseOrdersByVendor(ctx context.Context, vendorID int64) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM purchase_orders WHERE vendor_id = $1 ORDER BY id", vendorID)
	return orders, err
}

// UpdatePurchaseOrder persists the full purchase-order row
func (s *Store) UpdatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE purchase_orders
		SET po_number = $1, vendor_id = $2, order_date = $3, delivery_date = $4,
			items = $5, quantity = $6, status = $7, quality_rating = $8,
			issue_date = $9, acknowledgement_date = $10, updated_at = NOW()
		WHERE id = $11`,
		po.PONumber, po.VendorID, po.OrderDate, po.DeliveryDate,
		po.Items, po.Quantity, po.Status, po.QualityRating,
		po.IssueDate, po.AcknowledgementDate, po.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase order %d: %w", po.ID, ErrNotFound)
	}
	return nil
}

// DeletePurchaseOrder deletes a purchase order by ID
func (s *Store) DeletePurchaseOrder(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM purchase_orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetAcknowledgementDate stamps the acknowledgement date on an order.
// Re-acknowledging is allowed and resets the timestamp.
func (s *Store) SetAcknowledgementDate(ctx context.Context, id int64, ackedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE purchase_orders SET acknowledgement_date = $1, updated_at = NOW() WHERE id = $2",
		ackedAt, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountCompletedDeliveredBy counts completed purchase orders with a
// delivery date on or before the cutoff. The count is deliberately not
// vendor-scoped; only the on-time denominator filters by vendor.
func (s *Store) CountCompletedDeliveredBy(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM purchase_orders WHERE LOWER(status) = $1 AND delivery_date <= $2",
		models.StatusCompleted, cutoff)
	return count, err
}

// CountCompletedByVendor counts completed purchase orders for a vendor
func (s *Store) CountCompletedByVendor(ctx context.Context, vendorID int64) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM purchase_orders WHERE vendor_id = $1 AND LOWER(status) = $2",
		vendorID, models.StatusCompleted)
	return count, err
}
