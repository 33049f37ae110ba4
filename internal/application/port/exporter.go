package port

import "github.com/garyjia/rfq-portal/internal/domain/entity"

// QuotationExporter renders quotation groups into a downloadable document
type QuotationExporter interface {
	Export(rows []QuotationRow) ([]byte, error)
}

// QuotationRow is one quotation prepared for export
type QuotationRow struct {
	Group         entity.QuotationGroup
	ReferenceDate string
	ExpectedDate  string
	Status        string
	DaysText      string
	Tier          string
}
