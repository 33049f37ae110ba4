package entity

import "strings"

// Supplier is a vendor the user can browse quotations for
type Supplier struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Record Record `json:"record,omitempty"`
}

// NewSupplier builds a supplier from a supplier master row
func NewSupplier(r Record) Supplier {
	return Supplier{
		ID:     r.Text(FieldVendorID),
		Name:   r.Text(FieldVendorName),
		Record: r,
	}
}

// QueryID returns the identifier used in quotation filters
func (s Supplier) QueryID() string {
	return strings.TrimSpace(s.ID)
}

// Label is the selector caption, e.g. "Acme Ltd (42)"
func (s Supplier) Label() string {
	return s.Name + " (" + s.ID + ")"
}

// Matches reports whether the search text occurs in the name or id, ignoring case
func (s Supplier) Matches(search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.ID), q)
}
