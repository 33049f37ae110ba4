package entity

// Backend field names on quotation master rows
const (
	FieldReferenceNo   = "QUOTATION_REF_NO"
	FieldReferenceDate = "QUOTATION_REF_DATE"
	FieldExpectedDate  = "EXPECTED_DATE"
	FieldSerialNo      = "SERIAL_NO"
)

// Backend field names on supplier master rows
const (
	FieldVendorID   = "VENDOR_ID"
	FieldVendorName = "VENDOR_NAME"
)

// Data model names understood by the data service
const (
	ModelSupplierMaster  = "VENDOR_MASTER"
	ModelQuotationMaster = "INVT_PURCHASE_QUOTMASTER"
)

// Notice kinds
const (
	NoticeKindInfo    = "info"
	NoticeKindWarning = "warning"
	NoticeKindError   = "error"
)
