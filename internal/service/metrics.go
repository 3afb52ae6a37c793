package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vendor-service/internal/models"
	"vendor-service/internal/util"

	"go.uber.org/zap"
)

// MetricsCalculator derives the four vendor statistics from the current
// purchase-order set. All methods are pure reads; division by zero
// resolves to the zero value instead of an error.
type MetricsCalculator struct {
	store  PurchaseOrderStore
	logger *zap.Logger
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator(store PurchaseOrderStore) *MetricsCalculator {
	return &MetricsCalculator{
		store:  store,
		logger: util.GetLogger(),
	}
}

func isCompleted(status string) bool {
	return strings.ToLower(status) == models.StatusCompleted
}

// OnTimeDeliveryRate is the ratio of completed orders delivered on or
// before the cutoff to the vendor's total completed orders. The
// numerator is not vendor-scoped; only the denominator is. Returns 0
// when the vendor has no completed orders.
func (c *MetricsCalculator) OnTimeDeliveryRate(ctx context.Context, vendorID int64, cutoff time.Time) (float64, error) {
	onTime, err := c.store.CountCompletedDeliveredBy(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to count on-time deliveries: %w", err)
	}

	totalCompleted, err := c.store.CountCompletedByVendor(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed orders: %w", err)
	}

	if totalCompleted == 0 {
		return 0.0, nil
	}
	return float64(onTime) / float64(totalCompleted), nil
}

// QualityRatingAverage sums the set ratings over the vendor's completed
// orders and divides by the count of all completed orders, rated or not.
// Returns 0 when there are no completed orders.
func (c *MetricsCalculator) QualityRatingAverage(ctx context.Context, vendorID int64) (float64, error) {
	orders, err := c.store.ListPurchaseOrdersByVendor(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	var completed int
	var total float64
	for _, po := range orders {
		if !isCompleted(po.Status) {
			continue
		}
		completed++
		if po.QualityRating != nil {
			total += *po.QualityRating
		}
	}

	if completed == 0 {
		return 0.0, nil
	}
	return total / float64(completed), nil
}

// AverageResponseTime is the mean of acknowledgement_date - issue_date
// over the vendor's acknowledged orders. Unacknowledged orders are
// excluded entirely. Returns zero duration when none are acknowledged.
func (c *MetricsCalculator) AverageResponseTime(ctx context.Context, vendorID int64) (time.Duration, error) {
	orders, err := c.store.ListPurchaseOrdersByVendor(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	var acknowledged int
	var total time.Duration
	for _, po := range orders {
		if po.AcknowledgementDate == nil {
			continue
		}
		acknowledged++
		total += po.AcknowledgementDate.Sub(po.IssueDate)
	}

	if acknowledged == 0 {
		return 0, nil
	}
	return total / time.Duration(acknowledged), nil
}

// FulfillmentRate is the ratio of completed orders with an issue date to
// the vendor's total order count, any status. Returns 0 when the vendor
// has no orders.
func (c *MetricsCalculator) FulfillmentRate(ctx context.Context, vendorID int64) (float64, error) {
	orders, err := c.store.ListPurchaseOrdersByVendor(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	if len(orders) == 0 {
		return 0.0, nil
	}

	var fulfilled int
	for _, po := range orders {
		if isCompleted(po.Status) && !po.IssueDate.IsZero() {
			fulfilled++
		}
	}
	return float64(fulfilled) / float64(len(orders)), nil
}
