package entity

import "encoding/json"

// QuotationGroup is one logical quotation: the header fields of the first line
// seen for a reference number plus every line carrying that number.
type QuotationGroup struct {
	Header    Record
	Items     []Record
	ItemCount int
}

// ReferenceNo returns the grouping key
func (g QuotationGroup) ReferenceNo() string {
	return g.Header.Text(FieldReferenceNo)
}

// ReferenceDate returns the raw reference date
func (g QuotationGroup) ReferenceDate() string {
	return g.Header.Text(FieldReferenceDate)
}

// ExpectedDate returns the raw submission deadline
func (g QuotationGroup) ExpectedDate() string {
	return g.Header.Text(FieldExpectedDate)
}

// MarshalJSON flattens the header and adds items and itemCount
func (g QuotationGroup) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(g.Header)+2)
	for k, v := range g.Header {
		out[k] = v
	}
	items := g.Items
	if items == nil {
		items = []Record{}
	}
	out["items"] = items
	out["itemCount"] = g.ItemCount
	return json.Marshal(out)
}

// DetailsPayload is handed to the details view when a quotation is opened
type DetailsPayload struct {
	Path      string         `json:"path"`
	Quotation QuotationGroup `json:"quotation"`
	Supplier  *Supplier      `json:"supplier"`
	Items     []Record       `json:"items"`
}
