package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"salonscout/internal/model"
)

// utf8BOM makes Excel open the CSV with the right encoding; the exported
// text is mostly Traditional Chinese.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the records as a UTF-8-with-BOM CSV file at outputPath,
// creating parent directories as needed.
func WriteCSV(records []model.Record, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
