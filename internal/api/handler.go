package api

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"vendor-service/internal/service"
	"vendor-service/internal/store"
	"vendor-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	vendors     *service.VendorService
	orders      *service.PurchaseOrderService
	performance *service.PerformanceService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	vendors *service.VendorService,
	orders *service.PurchaseOrderService,
	performance *service.PerformanceService,
) *Handler {
	return &Handler{
		vendors:     vendors,
		orders:      orders,
		performance: performance,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	// Unsupported verbs on a known route must yield 405, not 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.Status(http.StatusMethodNotAllowed)
	})

	registerFieldNames()

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/vendors", h.listVendors)
	router.POST("/vendors", h.createVendor)
	router.GET("/vendors/:id", h.getVendor)
	router.PUT("/vendors/:id", h.updateVendor)
	router.DELETE("/vendors/:id", h.deleteVendor)
	router.GET("/vendors/:id/performance", h.vendorPerformance)

	router.GET("/purchase_orders", h.listPurchaseOrders)
	router.POST("/purchase_orders", h.createPurchaseOrder)
	router.GET("/purchase_orders/:id", h.getPurchaseOrder)
	router.PUT("/purchase_orders/:id", h.updatePurchaseOrder)
	router.DELETE("/purchase_orders/:id", h.deletePurchaseOrder)
	router.POST("/purchase_orders/:id/acknowledge", h.acknowledgePurchaseOrder)
}

// registerFieldNames makes validator report json field names, so
// validation payloads key on the wire names clients actually sent.
func registerFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listVendors handles GET /vendors
func (h *Handler) listVendors(c *gin.Context) {
	vendors, err := h.vendors.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vendors"})
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// createVendor handles POST /vendors
func (h *Handler) createVendor(c *gin.Context) {
	var req service.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	vendor, err := h.vendors.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// getVendor handles GET /vendors/:id
func (h *Handler) getVendor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	vendor, err := h.vendors.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// updateVendor handles PUT /vendors/:id (partial update)
func (h *Handler) updateVendor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.VendorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	vendor, err := h.vendors.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// deleteVendor handles DELETE /vendors/:id
func (h *Handler) deleteVendor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.vendors.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully."})
}

// vendorPerformance handles GET /vendors/:id/performance
func (h *Handler) vendorPerformance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.performance.GetVendorPerformance(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found."})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// listPurchaseOrders handles GET /purchase_orders
func (h *Handler) listPurchaseOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list purchase orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// createPurchaseOrder handles POST /purchase_orders. A successful create
// returns 200 with the stored order; a failed metric recompute surfaces
// as 400 even though the order itself persisted.
func (h *Handler) createPurchaseOrder(c *gin.Context) {
	var req service.PurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	po, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// getPurchaseOrder handles GET /purchase_orders/:id
func (h *Handler) getPurchaseOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	po, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// updatePurchaseOrder handles PUT /purchase_orders/:id (partial update)
func (h *Handler) updatePurchaseOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.PurchaseOrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	po, err := h.orders.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// deletePurchaseOrder handles DELETE /purchase_orders/:id
func (h *Handler) deletePurchaseOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase Order deleted successfully."})
}

// acknowledgePurchaseOrder handles POST /purchase_orders/:id/acknowledge
func (h *Handler) acknowledgePurchaseOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.performance.Acknowledge(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase order not found."})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase order acknowledged successfully."})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// respondBindingError turns bind failures into the per-field validation
// payload, or a generic 400 for malformed JSON.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				fields[fe.Field()] = "This field is required."
			} else {
				fields[fe.Field()] = "Invalid value."
			}
		}
		c.JSON(http.StatusBadRequest, fields)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}

func respondServiceError(c *gin.Context, err error) {
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, verrs)
		return
	}

	var inv *service.InvalidInputError
	if errors.As(err, &inv) {
		c.JSON(http.StatusBadRequest, gin.H{"error": inv.Error()})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
