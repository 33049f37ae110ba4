package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
)

// Sheet names in the exported workbook
const (
	SheetQuotations = "Quotations"
	SheetItems      = "Items"
)

var summaryHeader = []interface{}{"Reference No", "Reference Date", "Expected Date", "Status", "Deadline", "Items"}

// tierFills colours the status cell by urgency
var tierFills = map[string]string{
	"highest": "F8D7DA",
	"high":    "FFE5CC",
	"medium":  "D6E9FF",
	"low":     "D4EDDA",
}

var _ port.QuotationExporter = (*ExcelExporter)(nil)

// ExcelExporter writes quotation groups to an xlsx workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelExporter{logger: logger}
}

// Export renders one summary row per quotation and one item row per line
func (e *ExcelExporter) Export(rows []port.QuotationRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetQuotations); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetItems); err != nil {
		return nil, fmt.Errorf("failed to create items sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := e.writeSummary(f, rows, headerStyle); err != nil {
		return nil, err
	}
	itemCount, err := e.writeItems(f, rows, headerStyle)
	if err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Quotations exported",
		zap.Int("quotations", len(rows)),
		zap.Int("items", itemCount),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, rows []port.QuotationRow, headerStyle int) error {
	if err := f.SetSheetRow(SheetQuotations, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := f.SetCellStyle(SheetQuotations, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	fills := make(map[string]int)
	for i, row := range rows {
		line := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, line)
		values := []interface{}{
			row.Group.ReferenceNo(),
			row.ReferenceDate,
			row.ExpectedDate,
			row.Status,
			row.DaysText,
			row.Group.ItemCount,
		}
		if err := f.SetSheetRow(SheetQuotations, cell, &values); err != nil {
			return fmt.Errorf("failed to write quotation %s: %w", row.Group.ReferenceNo(), err)
		}

		color, ok := tierFills[row.Tier]
		if !ok {
			continue
		}
		style, ok := fills[row.Tier]
		if !ok {
			s, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			})
			if err != nil {
				return fmt.Errorf("failed to create status style: %w", err)
			}
			fills[row.Tier], style = s, s
		}
		status, _ := excelize.CoordinatesToCellName(4, line)
		if err := f.SetCellStyle(SheetQuotations, status, status, style); err != nil {
			e.logger.Warn("Failed to style status cell", zap.String("cell", status), zap.Error(err))
		}
	}

	if err := f.SetColWidth(SheetQuotations, "A", "F", 20); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}
	return nil
}

func (e *ExcelExporter) writeItems(f *excelize.File, rows []port.QuotationRow, headerStyle int) (int, error) {
	columns := itemColumns(rows)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetItems, "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write items header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(SheetItems, "A1", last, headerStyle); err != nil {
		return 0, fmt.Errorf("failed to style items header: %w", err)
	}

	line := 2
	for _, row := range rows {
		for _, item := range row.Group.Items {
			values := make([]interface{}, len(columns))
			for i, col := range columns {
				values[i] = item.Text(col)
			}
			cell, _ := excelize.CoordinatesToCellName(1, line)
			if err := f.SetSheetRow(SheetItems, cell, &values); err != nil {
				return 0, fmt.Errorf("failed to write item row %d: %w", line, err)
			}
			line++
		}
	}
	return line - 2, nil
}

// itemColumns returns the reference and serial columns first, then every other
// field seen on any item in name order.
func itemColumns(rows []port.QuotationRow) []string {
	fixed := []string{entity.FieldReferenceNo, entity.FieldSerialNo}
	seen := map[string]bool{entity.FieldReferenceNo: true, entity.FieldSerialNo: true}

	var extra []string
	for _, row := range rows {
		for _, item := range row.Group.Items {
			for k := range item {
				if !seen[k] {
					seen[k] = true
					extra = append(extra, k)
				}
			}
		}
	}
	sort.Strings(extra)
	return append(fixed, extra...)
}
