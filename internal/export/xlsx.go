package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salonscout/internal/model"
)

// Column order shared by the XLSX and CSV exporters.
var exportHeaders = []string{
	"name", "address", "phone", "source_url", "source_location", "origin",
}

func exportRow(rec model.Record) []string {
	return []string{
		rec.Name,
		rec.Address,
		rec.Phone,
		rec.SourceURL,
		rec.SourceLocation,
		string(rec.Origin),
	}
}

// WriteXLSX writes the records to an Excel workbook at outputPath,
// creating parent directories as needed.
func WriteXLSX(records []model.Record, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		for col, value := range exportRow(rec) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
