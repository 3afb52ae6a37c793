package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Vendor represents a vendor profile. The four performance fields are
// caches maintained by the performance service; the purchase-order set
// is the source of truth.
type Vendor struct {
	ID                  int64     `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	ContactDetails      string    `db:"contact_details" json:"contact_details"`
	Address             string    `db:"address" json:"address"`
	VendorCode          string    `db:"vendor_code" json:"vendor_code"`
	OnTimeDeliveryRate  float64   `db:"on_time_delivery_rate" json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `db:"quality_rating_avg" json:"quality_rating_avg"`
	AverageResponseTime float64   `db:"average_response_time" json:"average_response_time"`
	FulfillmentRate     float64   `db:"fulfillment_rate" json:"fulfillment_rate"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// ItemSet maps item name to ordered quantity, stored as jsonb.
type ItemSet map[string]int

// Value implements driver.Valuer.
func (s ItemSet) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *ItemSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("unsupported items column type %T", src)
	}
}

// PurchaseOrder represents a purchase order placed with a vendor.
// Status is free-form and compared case-insensitively against
// StatusCompleted.
type PurchaseOrder struct {
	ID                  int64      `db:"id" json:"id"`
	PONumber            string     `db:"po_number" json:"po_number"`
	VendorID            int64      `db:"vendor_id" json:"vendor"`
	OrderDate           time.Time  `db:"order_date" json:"order_date"`
	DeliveryDate        time.Time  `db:"delivery_date" json:"delivery_date"`
	Items               ItemSet    `db:"items" json:"items"`
	Quantity            int        `db:"quantity" json:"quantity"`
	Status              string     `db:"status" json:"status"`
	QualityRating       *float64   `db:"quality_rating" json:"quality_rating"`
	IssueDate           time.Time  `db:"issue_date" json:"issue_date"`
	AcknowledgementDate *time.Time `db:"acknowledgement_date" json:"acknowledgement_date"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Common purchase-order statuses. The column accepts any string.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// HistoricalPerformance is an immutable snapshot of the four vendor
// metrics at one point in time. Rows are append-only.
type HistoricalPerformance struct {
	ID                  int64     `db:"id" json:"id"`
	VendorID            int64     `db:"vendor_id" json:"vendor"`
	Date                time.Time `db:"date" json:"date"`
	OnTimeDeliveryRate  float64   `db:"on_time_delivery_rate" json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `db:"quality_rating_avg" json:"quality_rating_avg"`
	AverageResponseTime float64   `db:"average_response_time" json:"average_response_time"`
	FulfillmentRate     float64   `db:"fulfillment_rate" json:"fulfillment_rate"`
}

// PerformanceReport is the payload served by the vendor performance
// endpoint: the latest snapshot, or all zeros when none exists.
type PerformanceReport struct {
	OnTimeDeliveryRate  float64 `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64 `json:"quality_rating_avg"`
	AverageResponseTime float64 `json:"average_response_time"`
	FulfillmentRate     float64 `json:"fulfillment_rate"`
}
