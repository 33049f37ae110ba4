package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/rfq-portal/internal/application/service"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	portal  service.PortalService
	notices NoticeSource
	logger  Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(portal service.PortalService, notices NoticeSource, logger Logger) *Handlers {
	return &Handlers{
		portal:  portal,
		notices: notices,
		logger:  logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SelectionRequest selects a supplier by id or by display name
type SelectionRequest struct {
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
}

// SelectorRequest opens or closes the supplier selector
type SelectorRequest struct {
	Open bool `json:"open"`
}

// SupplierListResponse is the filtered supplier list
type SupplierListResponse struct {
	Search    string            `json:"search"`
	Suppliers []entity.Supplier `json:"suppliers"`
	Locked    bool              `json:"locked"`
}

// QuotationListResponse is the displayed quotation list
type QuotationListResponse struct {
	Supplier   *entity.Supplier        `json:"supplier"`
	Load       string                  `json:"load"`
	Quotations []service.QuotationView `json:"quotations"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GetState handles GET /api/state
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.portal.Snapshot()})
}

// ReloadSuppliers handles POST /api/suppliers/reload. Load failures are
// reported as notices, so the response is always the resulting state.
func (h *Handlers) ReloadSuppliers(c *gin.Context) {
	state := h.portal.LoadSuppliers(c.Request.Context())
	c.JSON(http.StatusOK, Response{Success: true, Data: state})
}

// ListSuppliers handles GET /api/suppliers?search=
func (h *Handlers) ListSuppliers(c *gin.Context) {
	search, present := c.GetQuery("search")
	if present {
		h.portal.SetSearch(utils.SanitizeString(search))
	}
	state := h.portal.Snapshot()

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: SupplierListResponse{
			Search:    state.SearchText,
			Suppliers: h.portal.FilteredSuppliers(),
			Locked:    state.SelectorLocked,
		},
	})
}

// SelectSupplier handles PUT /api/selection
func (h *Handlers) SelectSupplier(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid selection request", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	var (
		state service.PortalState
		err   error
	)
	switch {
	case strings.TrimSpace(req.SupplierID) != "":
		state, err = h.portal.SelectSupplierByID(c.Request.Context(), req.SupplierID)
	case req.SupplierName != "":
		state, err = h.portal.SelectSupplierByName(c.Request.Context(), req.SupplierName)
	default:
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "supplier_id or supplier_name is required"})
		return
	}

	if errors.Is(err, service.ErrSupplierNotFound) {
		c.JSON(http.StatusNotFound, Response{Success: false, Data: state, Error: "supplier not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: state})
}

// ClearSelection handles DELETE /api/selection
func (h *Handlers) ClearSelection(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.portal.ClearSupplier(c.Request.Context())})
}

// SetSelector handles PUT /api/selector
func (h *Handlers) SetSelector(c *gin.Context) {
	var req SelectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	var state service.PortalState
	if req.Open {
		state = h.portal.OpenSelector()
	} else {
		state = h.portal.CloseSelector()
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: state})
}

// ListQuotations handles GET /api/quotations
func (h *Handlers) ListQuotations(c *gin.Context) {
	state := h.portal.Snapshot()
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: QuotationListResponse{
			Supplier:   state.Selected,
			Load:       state.QuotationLoad.String(),
			Quotations: h.portal.Quotations(),
		},
	})
}

// RefreshQuotations handles POST /api/quotations/refresh
func (h *Handlers) RefreshQuotations(c *gin.Context) {
	state, err := h.portal.RefreshQuotations(c.Request.Context())
	if errors.Is(err, service.ErrNoSupplierSelected) {
		c.JSON(http.StatusConflict, Response{Success: false, Error: "no supplier selected"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: state})
}

// GetQuotation handles GET /api/quotations/:ref
func (h *Handlers) GetQuotation(c *gin.Context) {
	ref := c.Param("ref")

	payload, err := h.portal.OpenQuotation(ref)
	if err != nil {
		if errors.Is(err, service.ErrQuotationNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "quotation not found"})
			return
		}
		h.logger.Error("Failed to open quotation", "reference_no", ref, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to open quotation"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: payload})
}

// ExportQuotations handles GET /api/export/quotations
func (h *Handlers) ExportQuotations(c *gin.Context) {
	data, err := h.portal.ExportQuotations()
	if err != nil {
		if errors.Is(err, service.ErrExportUnavailable) {
			c.JSON(http.StatusNotImplemented, Response{Success: false, Error: "export is not available"})
			return
		}
		h.logger.Error("Failed to export quotations", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to export quotations"})
		return
	}

	filename := "quotations.xlsx"
	if sel := h.portal.Snapshot().Selected; sel != nil && sel.QueryID() != "" {
		filename = "quotations-" + url.PathEscape(sel.QueryID()) + ".xlsx"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DrainNotices handles GET /api/notices. With peek=true the notices stay queued.
func (h *Handlers) DrainNotices(c *gin.Context) {
	notices := []entity.Notice{}
	if h.notices != nil {
		if c.Query("peek") == "true" {
			notices = h.notices.Pending()
		} else {
			notices = h.notices.Drain()
		}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: notices})
}
