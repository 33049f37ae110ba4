// Package quotation groups flat quotation line records into quotations.
package quotation

import "github.com/garyjia/rfq-portal/internal/domain/entity"

// Group folds line records into quotation groups keyed by reference number.
// Groups keep first-seen order and items keep input order. The header and
// every item are independent shallow copies of their source records. A nil
// record is grouped as an empty line under the "" reference.
func Group(records []entity.Record) []entity.QuotationGroup {
	groups := make([]entity.QuotationGroup, 0)
	index := make(map[string]int)

	for _, rec := range records {
		if rec == nil {
			rec = entity.Record{}
		}
		key := rec.Text(entity.FieldReferenceNo)

		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, entity.QuotationGroup{
				Header: rec.WithSerialNo(),
				Items:  make([]entity.Record, 0, 1),
			})
		}

		g := &groups[i]
		g.Items = append(g.Items, rec.WithSerialNo())
		g.ItemCount = len(g.Items)
	}

	return groups
}

// TotalItems sums item counts across groups
func TotalItems(groups []entity.QuotationGroup) int {
	n := 0
	for _, g := range groups {
		n += g.ItemCount
	}
	return n
}
