package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"salonscout/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			Name:           "晶漾美甲沙龍",
			Address:        "高雄市三民區建工路88號",
			Phone:          "07-3831234",
			SourceURL:      "https://example.com/shop/1",
			SourceLocation: "三民",
			Origin:         model.OriginDirectory,
		},
		{
			Name:           "Bella Nails",
			Address:        model.Unknown,
			Phone:          model.Unknown,
			SourceURL:      "",
			SourceLocation: "左營",
			Origin:         model.OriginSearch,
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "salons.xlsx")
	if err := WriteXLSX(sampleRecords(), path); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "name" || rows[0][5] != "origin" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "晶漾美甲沙龍" || rows[1][2] != "07-3831234" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][1] != model.Unknown {
		t.Errorf("unknown sentinel not preserved: %v", rows[2])
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salons.csv")
	if err := WriteCSV(sampleRecords(), path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatal("missing UTF-8 BOM")
	}

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[1][3] != "https://example.com/shop/1" {
		t.Errorf("source_url = %q", rows[1][3])
	}
	if rows[2][5] != string(model.OriginSearch) {
		t.Errorf("origin = %q", rows[2][5])
	}
}
