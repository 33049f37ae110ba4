package service

import (
	"github.com/garyjia/rfq-portal/internal/domain/deadline"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/internal/domain/workflow"
)

// PortalState is a point-in-time copy of the portal screen state
type PortalState struct {
	Suppliers       []entity.Supplier       `json:"suppliers"`
	SupplierLoad    workflow.State          `json:"supplier_load"`
	Selected        *entity.Supplier        `json:"selected_supplier"`
	SelectorCaption string                  `json:"selector_caption"`
	SearchText      string                  `json:"search_text"`
	SelectorOpen    bool                    `json:"selector_open"`
	Quotations      []entity.QuotationGroup `json:"quotations"`
	QuotationLoad   workflow.State          `json:"quotation_load"`
	Loading         bool                    `json:"loading"`
	SelectorLocked  bool                    `json:"selector_locked"`
}

// QuotationView is a quotation group prepared for display
type QuotationView struct {
	Quotation     entity.QuotationGroup   `json:"quotation"`
	ReferenceNo   string                  `json:"reference_no"`
	ReferenceDate string                  `json:"reference_date"`
	ExpectedDate  string                  `json:"expected_date"`
	Deadline      deadline.Classification `json:"deadline"`
	Urgent        bool                    `json:"urgent"`
}

// PortalConfig names the data models and columns the portal queries
type PortalConfig struct {
	SupplierModel     string
	QuotationModel    string
	VendorColumn      string
	DateLayout        string
	DetailsPathPrefix string
}

// DefaultPortalConfig returns the backend names used by the purchase module
func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		SupplierModel:     entity.ModelSupplierMaster,
		QuotationModel:    entity.ModelQuotationMaster,
		VendorColumn:      "SELECTED_VENDOR",
		DateLayout:        "02-Jan-2006",
		DetailsPathPrefix: "/rfq-details/",
	}
}

func (c PortalConfig) withDefaults() PortalConfig {
	d := DefaultPortalConfig()
	if c.SupplierModel == "" {
		c.SupplierModel = d.SupplierModel
	}
	if c.QuotationModel == "" {
		c.QuotationModel = d.QuotationModel
	}
	if c.VendorColumn == "" {
		c.VendorColumn = d.VendorColumn
	}
	if c.DateLayout == "" {
		c.DateLayout = d.DateLayout
	}
	if c.DetailsPathPrefix == "" {
		c.DetailsPathPrefix = d.DetailsPathPrefix
	}
	return c
}
