package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/internal/domain/quotation"
)

func sampleRows() []port.QuotationRow {
	groups := quotation.Group([]entity.Record{
		{entity.FieldReferenceNo: "Q1", entity.FieldSerialNo: "1", "ITEM_CODE": "BOLT-10"},
		{entity.FieldReferenceNo: "Q2", entity.FieldSerialNo: "1", "UOM": "KG"},
		{entity.FieldReferenceNo: "Q1", entity.FieldSerialNo: nil, "ITEM_CODE": "NUT-10"},
	})
	return []port.QuotationRow{
		{Group: groups[0], ReferenceDate: "01-Oct-2026", ExpectedDate: "14-Oct-2026", Status: "Due today", DaysText: "Last day to submit", Tier: "highest"},
		{Group: groups[1], ExpectedDate: "", Status: "No date", DaysText: "No deadline", Tier: "none"},
	}
}

func TestExcelExporter_Export(t *testing.T) {
	data, err := NewExcelExporter(zap.NewNop()).Export(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetQuotations, SheetItems}, f.GetSheetList())

	summary, err := f.GetRows(SheetQuotations)
	require.NoError(t, err)
	require.Len(t, summary, 3, "header plus one row per quotation")
	assert.Equal(t, []string{"Reference No", "Reference Date", "Expected Date", "Status", "Deadline", "Items"}, summary[0])
	assert.Equal(t, []string{"Q1", "01-Oct-2026", "14-Oct-2026", "Due today", "Last day to submit", "2"}, summary[1])
	assert.Equal(t, "Q2", summary[2][0])

	items, err := f.GetRows(SheetItems)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, []string{entity.FieldReferenceNo, entity.FieldSerialNo, "ITEM_CODE", "UOM"}, items[0])
	assert.Equal(t, []string{"Q1", "1", "BOLT-10"}, items[1])
	assert.Equal(t, "NUT-10", items[2][2])
	assert.Equal(t, "", items[2][1])
	assert.Equal(t, []string{"Q2", "1", "", "KG"}, items[3])
}

func TestExcelExporter_Empty(t *testing.T) {
	data, err := NewExcelExporter(nil).Export(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows(SheetQuotations)
	require.NoError(t, err)
	assert.Len(t, summary, 1)
}
