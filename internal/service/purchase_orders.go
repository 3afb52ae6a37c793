package service

import (
	"context"
	"errors"
	"time"

	"vendor-service/internal/models"
	"vendor-service/internal/store"
	"vendor-service/internal/util"

	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase-order CRUD and invokes the
// performance recorder synchronously after creates and updates.
type PurchaseOrderService struct {
	vendors     VendorStore
	store       PurchaseOrderStore
	performance *PerformanceService
	logger      *zap.Logger
}

// NewPurchaseOrderService creates a new purchase-order service
func NewPurchaseOrderService(vendors VendorStore, orders PurchaseOrderStore, performance *PerformanceService) *PurchaseOrderService {
	return &PurchaseOrderService{
		vendors:     vendors,
		store:       orders,
		performance: performance,
		logger:      util.GetLogger(),
	}
}

// PurchaseOrderRequest represents a request to create a purchase order.
// Dates are strings so the recorder can re-parse the raw delivery date
// as the on-time cutoff.
type PurchaseOrderRequest struct {
	PONumber            string         `json:"po_number" binding:"required"`
	VendorID            int64          `json:"vendor" binding:"required"`
	OrderDate           string         `json:"order_date" binding:"required"`
	DeliveryDate        string         `json:"delivery_date" binding:"required"`
	Items               map[string]int `json:"items" binding:"required"`
	Quantity            int            `json:"quantity" binding:"required"`
	Status              string         `json:"status" binding:"required"`
	QualityRating       *float64       `json:"quality_rating"`
	IssueDate           string         `json:"issue_date" binding:"required"`
	AcknowledgementDate *string        `json:"acknowledgement_date"`
}

// PurchaseOrderUpdateRequest represents a partial purchase-order update
type PurchaseOrderUpdateRequest struct {
	PONumber            *string        `json:"po_number"`
	VendorID            *int64         `json:"vendor"`
	OrderDate           *string        `json:"order_date"`
	DeliveryDate        *string        `json:"delivery_date"`
	Items               map[string]int `json:"items"`
	Quantity            *int           `json:"quantity"`
	Status              *string        `json:"status"`
	QualityRating       *float64       `json:"quality_rating"`
	IssueDate           *string        `json:"issue_date"`
	AcknowledgementDate *string        `json:"acknowledgement_date"`
}

// Create persists a new purchase order and then runs the metric
// recompute. The order stays persisted even when the recompute aborts;
// only the metric writes are skipped, and the failure surfaces to the
// caller.
func (s *PurchaseOrderService) Create(ctx context.Context, req *PurchaseOrderRequest) (*models.PurchaseOrder, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseOrderService.Create")
	defer span.End()

	if _, err := s.vendors.GetVendorByID(ctx, req.VendorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ValidationErrors{"vendor": "Vendor not found."}
		}
		return nil, err
	}

	verrs := ValidationErrors{}
	orderDate := parseDateField(req.OrderDate, "order_date", verrs)
	deliveryDate := parseDateField(req.DeliveryDate, "delivery_date", verrs)
	issueDate := parseDateField(req.IssueDate, "issue_date", verrs)
	var ackDate *time.Time
	if req.AcknowledgementDate != nil {
		t := parseDateField(*req.AcknowledgementDate, "acknowledgement_date", verrs)
		ackDate = &t
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	po := &models.PurchaseOrder{
		PONumber:            req.PONumber,
		VendorID:            req.VendorID,
		OrderDate:           orderDate,
		DeliveryDate:        deliveryDate,
		Items:               models.ItemSet(req.Items),
		Quantity:            req.Quantity,
		Status:              req.Status,
		QualityRating:       req.QualityRating,
		IssueDate:           issueDate,
		AcknowledgementDate: ackDate,
	}

	if err := s.store.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}

	util.PurchaseOrdersCreatedTotal.Inc()
	s.logger.Info("Purchase order created",
		zap.Int64("po_id", po.ID),
		zap.String("po_number", po.PONumber),
		zap.Int64("vendor_id", po.VendorID))

	if err := s.performance.RecordMetrics(ctx, po.VendorID, req.Status, req.DeliveryDate, "create"); err != nil {
		return nil, err
	}
	return po, nil
}

// Get retrieves a purchase order by ID
func (s *PurchaseOrderService) Get(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	return s.store.GetPurchaseOrderByID(ctx, id)
}

// List retrieves all purchase orders
func (s *PurchaseOrderService) List(ctx context.Context) ([]models.PurchaseOrder, error) {
	return s.store.ListPurchaseOrders(ctx)
}

// Update applies a partial update and then runs the metric recompute
// against the merged order. When the request omits the delivery date the
// cutoff is re-derived from the stored one, so only an explicitly
// submitted malformed date can abort the cycle.
func (s *PurchaseOrderService) Update(ctx context.Context, id int64, req *PurchaseOrderUpdateRequest) (*models.PurchaseOrder, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseOrderService.Update")
	defer span.End()

	po, err := s.store.GetPurchaseOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.VendorID != nil {
		if _, err := s.vendors.GetVendorByID(ctx, *req.VendorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ValidationErrors{"vendor": "Vendor not found."}
			}
			return nil, err
		}
		po.VendorID = *req.VendorID
	}

	verrs := ValidationErrors{}
	if req.OrderDate != nil {
		po.OrderDate = parseDateField(*req.OrderDate, "order_date", verrs)
	}
	if req.DeliveryDate != nil {
		po.DeliveryDate = parseDateField(*req.DeliveryDate, "delivery_date", verrs)
	}
	if req.IssueDate != nil {
		po.IssueDate = parseDateField(*req.IssueDate, "issue_date", verrs)
	}
	if req.AcknowledgementDate != nil {
		t := parseDateField(*req.AcknowledgementDate, "acknowledgement_date", verrs)
		po.AcknowledgementDate = &t
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	if req.PONumber != nil {
		po.PONumber = *req.PONumber
	}
	if req.Items != nil {
		po.Items = models.ItemSet(req.Items)
	}
	if req.Quantity != nil {
		po.Quantity = *req.Quantity
	}
	if req.Status != nil {
		po.Status = *req.Status
	}
	if req.QualityRating != nil {
		po.QualityRating = req.QualityRating
	}

	if err := s.store.UpdatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}

	rawDeliveryDate := po.DeliveryDate.Format(cutoffLayout)
	if req.DeliveryDate != nil {
		rawDeliveryDate = *req.DeliveryDate
	}
	if err := s.performance.RecordMetrics(ctx, po.VendorID, po.Status, rawDeliveryDate, "update"); err != nil {
		return nil, err
	}
	return po, nil
}

// Delete removes a purchase order by ID
func (s *PurchaseOrderService) Delete(ctx context.Context, id int64) error {
	return s.store.DeletePurchaseOrder(ctx, id)
}

func parseDateField(raw, field string, verrs ValidationErrors) time.Time {
	t, err := parseDateTime(raw)
	if err != nil {
		verrs[field] = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DD HH:MM:SS."
	}
	return t
}
