package models

import "time"

// Event types
const (
	EventTypePerformanceRecalculated   = "PERFORMANCE_RECALCULATED"
	EventTypeSnapshotRecorded          = "SNAPSHOT_RECORDED"
	EventTypePurchaseOrderAcknowledged = "PURCHASE_ORDER_ACKNOWLEDGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PerformanceRecalculatedEvent published after a purchase-order write
// triggers a metric recompute. The two conditional metrics are nil when
// the triggering order was not completed that cycle.
type PerformanceRecalculatedEvent struct {
	BaseEvent
	VendorID            int64    `json:"vendor_id"`
	Trigger             string   `json:"trigger"`
	OnTimeDeliveryRate  *float64 `json:"on_time_delivery_rate"`
	QualityRatingAvg    *float64 `json:"quality_rating_avg"`
	AverageResponseTime float64  `json:"average_response_time"`
	FulfillmentRate     float64  `json:"fulfillment_rate"`
}

// SnapshotRecordedEvent published when a historical snapshot is appended
type SnapshotRecordedEvent struct {
	BaseEvent
	VendorID            int64     `json:"vendor_id"`
	SnapshotID          int64     `json:"snapshot_id"`
	Date                time.Time `json:"date"`
	OnTimeDeliveryRate  float64   `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64   `json:"quality_rating_avg"`
	AverageResponseTime float64   `json:"average_response_time"`
	FulfillmentRate     float64   `json:"fulfillment_rate"`
}

// PurchaseOrderAcknowledgedEvent published when a vendor acknowledges an order
type PurchaseOrderAcknowledgedEvent struct {
	BaseEvent
	PurchaseOrderID     int64     `json:"purchase_order_id"`
	VendorID            int64     `json:"vendor_id"`
	AcknowledgementDate time.Time `json:"acknowledgement_date"`
	AverageResponseTime float64   `json:"average_response_time"`
}
