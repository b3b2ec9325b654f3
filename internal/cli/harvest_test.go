package cli

import (
	"os"
	"path/filepath"
	"testing"

	"salonscout/internal/model"
)

func TestValidateHarvestConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	if err := validateHarvestConfig(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	bad := model.DefaultConfig()
	bad.Harvest.DedupePolicy = "fuzzy"
	if err := validateHarvestConfig(bad); err == nil {
		t.Error("unknown dedupe policy accepted")
	}

	bad = model.DefaultConfig()
	bad.Harvest.DedupeScope = "per-city"
	if err := validateHarvestConfig(bad); err == nil {
		t.Error("unknown dedupe scope accepted")
	}

	bad = model.DefaultConfig()
	bad.Harvest.Anchors = nil
	if err := validateHarvestConfig(bad); err == nil {
		t.Error("empty district list accepted")
	}
}

func TestReadAnchorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "districts.txt")
	content := "左營\n\n# northern districts\n楠梓\n  鳳山  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	districts, err := readAnchorFile(path)
	if err != nil {
		t.Fatalf("readAnchorFile: %v", err)
	}

	want := []string{"左營", "楠梓", "鳳山"}
	if len(districts) != len(want) {
		t.Fatalf("districts = %v, want %v", districts, want)
	}
	for i := range want {
		if districts[i] != want[i] {
			t.Errorf("districts[%d] = %q, want %q", i, districts[i], want[i])
		}
	}
}

func TestReadAnchorFileMissing(t *testing.T) {
	if _, err := readAnchorFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
