package service

import (
	"context"

	"vendor-service/internal/models"
	"vendor-service/internal/util"

	"go.uber.org/zap"
)

// VendorService handles vendor CRUD
type VendorService struct {
	store  VendorStore
	cache  SnapshotCache
	logger *zap.Logger
}

// NewVendorService creates a new vendor service
func NewVendorService(store VendorStore, cache SnapshotCache) *VendorService {
	return &VendorService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// VendorRequest represents a request to create a vendor. The four metric
// fields are optional seeds; the performance service overwrites them.
type VendorRequest struct {
	Name                string   `json:"name" binding:"required"`
	ContactDetails      string   `json:"contact_details" binding:"required"`
	Address             string   `json:"address" binding:"required"`
	VendorCode          string   `json:"vendor_code" binding:"required"`
	OnTimeDeliveryRate  *float64 `json:"on_time_delivery_rate"`
	QualityRatingAvg    *float64 `json:"quality_rating_avg"`
	AverageResponseTime *float64 `json:"average_response_time"`
	FulfillmentRate     *float64 `json:"fulfillment_rate"`
}

// VendorUpdateRequest represents a partial vendor update
type VendorUpdateRequest struct {
	Name                *string  `json:"name"`
	ContactDetails      *string  `json:"contact_details"`
	Address             *string  `json:"address"`
	VendorCode          *string  `json:"vendor_code"`
	OnTimeDeliveryRate  *float64 `json:"on_time_delivery_rate"`
	QualityRatingAvg    *float64 `json:"quality_rating_avg"`
	AverageResponseTime *float64 `json:"average_response_time"`
	FulfillmentRate     *float64 `json:"fulfillment_rate"`
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, req *VendorRequest) (*models.Vendor, error) {
	vendor := &models.Vendor{
		Name:           req.Name,
		ContactDetails: req.ContactDetails,
		Address:        req.Address,
		VendorCode:     req.VendorCode,
	}
	if req.OnTimeDeliveryRate != nil {
		vendor.OnTimeDeliveryRate = *req.OnTimeDeliveryRate
	}
	if req.QualityRatingAvg != nil {
		vendor.QualityRatingAvg = *req.QualityRatingAvg
	}
	if req.AverageResponseTime != nil {
		vendor.AverageResponseTime = *req.AverageResponseTime
	}
	if req.FulfillmentRate != nil {
		vendor.FulfillmentRate = *req.FulfillmentRate
	}

	if err := s.store.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}

	util.VendorsCreatedTotal.Inc()
	s.logger.Info("Vendor created",
		zap.Int64("vendor_id", vendor.ID),
		zap.String("vendor_code", vendor.VendorCode))
	return vendor, nil
}

// Get retrieves a vendor by ID
func (s *VendorService) Get(ctx context.Context, id int64) (*models.Vendor, error) {
	return s.store.GetVendorByID(ctx, id)
}

// List retrieves all vendors
func (s *VendorService) List(ctx context.Context) ([]models.Vendor, error) {
	return s.store.ListVendors(ctx)
}

// Update applies a partial update to a vendor
func (s *VendorService) Update(ctx context.Context, id int64, req *VendorUpdateRequest) (*models.Vendor, error) {
	vendor, err := s.store.GetVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		vendor.Name = *req.Name
	}
	if req.ContactDetails != nil {
		vendor.ContactDetails = *req.ContactDetails
	}
	if req.Address != nil {
		vendor.Address = *req.Address
	}
	if req.VendorCode != nil {
		vendor.VendorCode = *req.VendorCode
	}
	if req.OnTimeDeliveryRate != nil {
		vendor.OnTimeDeliveryRate = *req.OnTimeDeliveryRate
	}
	if req.QualityRatingAvg != nil {
		vendor.QualityRatingAvg = *req.QualityRatingAvg
	}
	if req.AverageResponseTime != nil {
		vendor.AverageResponseTime = *req.AverageResponseTime
	}
	if req.FulfillmentRate != nil {
		vendor.FulfillmentRate = *req.FulfillmentRate
	}

	if err := s.store.UpdateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// Delete removes a vendor; the store cascades to its purchase orders and
// snapshots, and the cached performance report is invalidated.
func (s *VendorService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteVendor(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate performance cache",
			zap.Int64("vendor_id", id), zap.Error(err))
	}

	s.logger.Info("Vendor deleted", zap.Int64("vendor_id", id))
	return nil
}
