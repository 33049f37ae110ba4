package service

import "errors"

var (
	// ErrSupplierNotFound is returned when a selection names a supplier that is not loaded
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrQuotationNotFound is returned when no displayed quotation has the reference number
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrNoSupplierSelected is returned by operations that need a selected supplier
	ErrNoSupplierSelected = errors.New("no supplier selected")

	// ErrExportUnavailable is returned when no exporter is configured
	ErrExportUnavailable = errors.New("quotation export is not configured")
)
