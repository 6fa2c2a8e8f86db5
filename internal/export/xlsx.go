package export

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet used for workbook exports.
const SheetName = "EDA_MASTER_SHEET"

// WriteXLSX writes the master sheet as a workbook. Cells that parse as
// numbers are stored as numbers; ids, names and "N/A" stay text. With no
// records nothing is written.
func WriteXLSX(path string, records []metrics.Record) (written bool, err error) {
	if len(records) == 0 {
		return false, nil
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return false, fmt.Errorf("rename sheet: %w", err)
	}
	header := Header()
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &hdr); err != nil {
		return false, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		fields := Fields(r)
		row := make([]interface{}, len(fields))
		for j, v := range fields {
			row[j] = cellValue(j, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return false, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return false, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return false, fmt.Errorf("freeze panes: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return false, fmt.Errorf("save workbook: %w", err)
	}
	return true, nil
}

// cellValue keeps id and name as text and converts finite numeric metric
// cells. Infinity and NaN stay text so the workbook matches the CSV.
func cellValue(col int, v string) interface{} {
	if col < 2 || v == "" {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return v
}
