package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mayasquare/sales-analytics/internal/application/analytics"
	"github.com/mayasquare/sales-analytics/internal/interfaces/http/dto"
)

// ReportHandler serves assembled sales reports and CSV exports
type ReportHandler struct {
	BaseHandler
	service *analytics.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *analytics.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// Get returns the full sales report
func (h *ReportHandler) Get(c *gin.Context) {
	rep, cached, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCachedResponse(rep, cached))
}

// Products returns the per-product section of the report
func (h *ReportHandler) Products(c *gin.Context) {
	rep, _, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rep.SalesByProduct)
}

// Stores returns the per-store section of the report
func (h *ReportHandler) Stores(c *gin.Context) {
	rep, _, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rep.SalesByStore)
}

// Matrix returns the product-store matrix section of the report
func (h *ReportHandler) Matrix(c *gin.Context) {
	rep, _, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rep.ProductStoreMatrix)
}

// Timeline returns the time-only aggregation section of the report
func (h *ReportHandler) Timeline(c *gin.Context) {
	rep, _, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rep.SalesByTime)
}

// Overview returns the current-period snapshot section of the report
func (h *ReportHandler) Overview(c *gin.Context) {
	rep, _, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rep.Overview)
}

// Refresh discards the cached report and rebuilds it from the source
func (h *ReportHandler) Refresh(c *gin.Context) {
	rep, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rep.Metadata)
}

// Export streams one report section as a CSV download.
// The section is selected with the type query parameter:
// products, stores or matrix.
func (h *ReportHandler) Export(c *gin.Context) {
	exportType := c.DefaultQuery("type", analytics.ExportProducts)

	rep, _, err := h.service.GetReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := analytics.ExportCSV(&buf, rep, exportType); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+analytics.ExportFilename(exportType)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// RegisterRoutes registers report routes on the given router group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	report := rg.Group("/report")
	{
		report.GET("", h.Get)
		report.GET("/products", h.Products)
		report.GET("/stores", h.Stores)
		report.GET("/matrix", h.Matrix)
		report.GET("/timeline", h.Timeline)
		report.GET("/overview", h.Overview)
		report.POST("/refresh", h.Refresh)
	}
	rg.GET("/export", h.Export)
}
